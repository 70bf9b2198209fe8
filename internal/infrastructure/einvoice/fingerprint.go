package einvoice

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

// Fingerprint SHA-256 hex de la forma canónica de DLHDon (los datos de la factura sin las firmas).
// Dos copias del mismo documento con distinto formato o re-firmadas dan el mismo valor.
func Fingerprint(data []byte) (string, error) {
	doc, err := readDocument(data)
	if err != nil {
		return "", err
	}
	return fingerprintDoc(doc)
}

func fingerprintDoc(doc *etree.Document) (string, error) {
	root := doc.Root()
	target := root
	if dl := findChild(root, "DLHDon"); dl != nil {
		target = dl
	}
	sub := etree.NewDocument()
	sub.SetRoot(target.Copy())
	raw, err := sub.WriteToBytes()
	if err != nil {
		return "", err
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return "", err
	}
	return sha256Hex(canonical), nil
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	dec.CharsetReader = charsetReader
	return c14n.Canonicalize(dec)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Digester resume los adjuntos: los XML sobre su forma canónica, el resto byte a byte.
type Digester struct{}

// NewDigester construye el digester.
func NewDigester() Digester { return Digester{} }

// Digest implementa ports.ContentDigester. Un XML que no se puede canonicalizar se resume en crudo.
func (Digester) Digest(mimeType string, data []byte) string {
	if strings.Contains(mimeType, "xml") {
		if canonical, err := canonicalize(data); err == nil {
			return sha256Hex(canonical)
		}
	}
	return sha256Hex(data)
}

var _ ports.ContentDigester = Digester{}
