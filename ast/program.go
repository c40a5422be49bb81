package ast

import "strings"

type Param struct {
	Name string
	Type string
}

type ReturnType struct {
	Type string
}

// Signature is the declaration shape of a function or method, recorded by the
// parser in declaration order.
type Signature struct {
	Name    string
	Params  []Param
	Returns []ReturnType
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString("(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type)
	}
	b.WriteString(")")
	return b.String()
}

// Program is what passes hand to each other: the IR and the signatures
// collected while it was parsed.
type Program struct {
	Nodes      []Node
	Signatures []Signature
}
