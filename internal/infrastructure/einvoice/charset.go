package einvoice

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// charsetReader decodifica los XML que algunos proveedores antiguos emiten
// en codificaciones distintas de UTF-8.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return input, nil
	case "windows-1258", "cp1258":
		return transform.NewReader(input, charmap.Windows1258.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	}
	return nil, fmt.Errorf("einvoice: codificación no soportada %q", charset)
}
