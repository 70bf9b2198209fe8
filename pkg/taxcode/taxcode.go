// Package taxcode normaliza y valida el mã số thuế (MST) vietnamita.
package taxcode

import (
	"fmt"
	"strings"
)

// pesos del dígito de control, aplicados a los 9 primeros dígitos de izquierda a derecha.
var weights = [9]int{31, 29, 23, 19, 17, 13, 7, 5, 3}

// Normalize deja solo dígitos y el guión de sucursal: "MST 0101234567-001" -> "0101234567-001".
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// Validate acepta los formatos emitidos:
// 10 dígitos (empresa), 10-3 (sucursal) y 12 dígitos (persona, número de CCCD).
func Validate(s string) error {
	code := Normalize(s)
	main, branch, hasBranch := strings.Cut(code, "-")
	switch {
	case hasBranch && (len(main) != 10 || len(branch) != 3 || strings.Contains(branch, "-")):
		return fmt.Errorf("taxcode: %q no tiene el formato 0000000000-000", s)
	case !hasBranch && len(main) != 10 && len(main) != 12:
		return fmt.Errorf("taxcode: %q debe tener 10 o 12 dígitos, tiene %d", s, len(main))
	}
	return nil
}

// CheckDigit calcula el décimo dígito para los 9 primeros.
// ok=false cuando el resultado sería 10: ninguna MST se emite con esa base.
func CheckDigit(base string) (digit byte, ok bool) {
	if len(base) < 9 {
		return 0, false
	}
	var sum int
	for i := 0; i < 9; i++ {
		c := base[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		sum += int(c-'0') * weights[i]
	}
	d := 10 - sum%11
	if d == 10 {
		return 0, false
	}
	return byte('0' + d), true
}

// HasValidCheckDigit comprueba el décimo dígito de las MST de 10 dígitos (con o sin sucursal).
// Las de 12 dígitos no llevan dígito de control y siempre pasan.
func HasValidCheckDigit(s string) bool {
	code := Normalize(s)
	main, _, _ := strings.Cut(code, "-")
	if len(main) == 12 {
		return true
	}
	if len(main) != 10 {
		return false
	}
	want, ok := CheckDigit(main)
	return ok && main[9] == want
}
