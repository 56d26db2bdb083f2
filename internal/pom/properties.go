package pom

import (
	"encoding/xml"
	"strings"
)

// Property is a single entry of a properties section.
type Property struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Properties is an insertion-ordered string map.
type Properties struct {
	entries []Property
	index   map[string]int
}

// Get returns the value of name.
func (p *Properties) Get(name string) (string, bool) {
	i, ok := p.index[name]
	if !ok {
		return "", false
	}
	return p.entries[i].Value, true
}

// Set replaces the value of an existing property in place or appends a new one.
func (p *Properties) Set(name, value string) {
	if i, ok := p.index[name]; ok {
		p.entries[i].Value = value
		return
	}
	if p.index == nil {
		p.index = make(map[string]int)
	}
	p.index[name] = len(p.entries)
	p.entries = append(p.entries, Property{Name: name, Value: value})
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	return len(p.entries)
}

// All returns a copy of the entries in declaration order.
func (p *Properties) All() []Property {
	return append([]Property(nil), p.entries...)
}

// UnmarshalXML reads child elements as name/value pairs.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			p.Set(t.Name.Local, strings.TrimSpace(v))
		case xml.EndElement:
			return nil
		}
	}
}
