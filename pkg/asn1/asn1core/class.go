package asn1core

import "fmt"

type Class uint8

const (
	ClassUniversal       = Class(0)
	ClassApplication     = Class(1)
	ClassContextSpecific = Class(2)
	ClassPrivate         = Class(3)
)

var classMap mapping[Class]

func init() {
	classMap.Add("UNIVERSAL", ClassUniversal)
	classMap.Add("APPLICATION", ClassApplication)
	classMap.Add("CONTEXT", ClassContextSpecific)
	classMap.Add("PRIVATE", ClassPrivate)
	classMap.AddAlias("CONTEXT", "ContextSpecific", "Context-Specific")
}

// ClassOf reads the class from the top two bits of an identifier octet.
func ClassOf(identifier byte) Class {
	return Class(identifier >> 6)
}

// IdentifierBits is c placed where ClassOf reads it.
func (c Class) IdentifierBits() byte {
	return byte(c&3) << 6
}

func (c Class) String() string {
	if name, err := classMap.Name(c); err == nil {
		return name
	}
	return fmt.Sprintf("CLASS %d", uint8(c))
}

// ParseClass accepts the names used in tag notation, in any case.
func ParseClass(class string) (Class, error) {
	return classMap.Value(class)
}
