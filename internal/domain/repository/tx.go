package repository

import "context"

// TxStores repositorios atados a una misma transacción.
type TxStores struct {
	Products  ProductRepository
	Movements InventoryMovementRepository
	Imports   ImportInvoiceRepository
	Exports   ExportInvoiceRepository
	Debts     DebtRepository
	Partners  PartnerRepository
	Sequences SequenceRepository
}

// TxRunner ejecuta fn dentro de una transacción; si fn devuelve error se hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(s TxStores) error) error
}
