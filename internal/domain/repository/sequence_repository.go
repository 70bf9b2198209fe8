package repository

import "context"

// SequenceRepository entrega consecutivos por empresa y ámbito (KH, NCC, PX202410...).
type SequenceRepository interface {
	Next(ctx context.Context, companyID, scope string) (int64, error)
}
