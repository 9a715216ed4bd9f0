package ast

import (
	"strings"

	"github.com/google/uuid"
)

// fingerprintSpace is the UUID namespace for schema fingerprints.
var fingerprintSpace = uuid.MustParse("5c1e0a3e-7d2b-4f53-9a43-2f0c8b6e1d47")

// Fingerprint returns a name-based UUID of the module's wire-relevant shape.
// Doc strings and comments do not contribute, so reformatting or
// re-documenting a schema keeps its fingerprint.
func Fingerprint(mod *Module) uuid.UUID {
	var b strings.Builder
	writeShape(&b, mod)
	return uuid.NewSHA1(fingerprintSpace, []byte(b.String()))
}

func writeShape(b *strings.Builder, mod *Module) {
	b.WriteString("mod ")
	b.WriteString(mod.Name)
	b.WriteByte('\n')
	for _, n := range mod.Members {
		switch n := n.(type) {
		case *Module:
			writeShape(b, n)
		case *Function:
			b.WriteString("fun ")
			b.WriteString(n.Name)
			writeTypes(b, n.Arguments)
			b.WriteString(" ->")
			writeTypes(b, n.ReturnValues)
		case *Record:
			b.WriteString("rec ")
			b.WriteString(n.Name)
			writeTypes(b, n.Fields)
		case *Enum:
			b.WriteString("enu ")
			b.WriteString(n.Name)
			for _, v := range n.Variants {
				b.WriteByte(' ')
				b.WriteString(v)
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("end\n")
}

func writeTypes(b *strings.Builder, nts []*NamedType) {
	for _, nt := range nts {
		b.WriteByte(' ')
		b.WriteString(nt.Name)
		b.WriteByte(':')
		for _, m := range nt.Modifiers {
			b.WriteString(m.String())
			b.WriteByte(' ')
		}
		b.WriteString(nt.TypeName())
	}
}
