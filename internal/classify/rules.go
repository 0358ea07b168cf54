package classify

import "strings"

// Family is an instruction class whose encoding embeds an address or
// offset fixed up at link time.
type Family string

const (
	Branch             Family = "b"
	LoadImmediate      Family = "li"
	LoadImmediateShift Family = "lis"
	StoreWord          Family = "stw"
	LoadFloatSingle    Family = "lfs"
	StoreFloatSingle   Family = "stfs"
)

// AddressSensitive lists every family the relocation rule ignores.
var AddressSensitive = []Family{
	Branch,
	LoadImmediate,
	LoadImmediateShift,
	StoreWord,
	LoadFloatSingle,
	StoreFloatSingle,
}

// Families returns the address-sensitive families whose text occurs in m.
// Matching is by substring, so "stwu" counts as StoreWord and any
// mnemonic containing a "b" counts as Branch.
func Families(m Mnemonic) []Family {
	var found []Family
	for _, f := range AddressSensitive {
		if strings.Contains(string(m), string(f)) {
			found = append(found, f)
		}
	}
	return found
}

// Rule decides whether two different mnemonics are interchangeable.
type Rule interface {
	Equivalent(a, b Mnemonic) bool
}

// RelocationRule accepts two mnemonics that share an address-sensitive family.
type RelocationRule struct{}

func (RelocationRule) Equivalent(a, b Mnemonic) bool {
	for _, f := range AddressSensitive {
		if strings.Contains(string(a), string(f)) && strings.Contains(string(b), string(f)) {
			return true
		}
	}
	return false
}

// RuleChain accepts a pair as soon as any of its rules does.
type RuleChain struct {
	rules []Rule
}

// NewRuleChain creates a new rule chain
func NewRuleChain(rules ...Rule) *RuleChain {
	return &RuleChain{rules: rules}
}

func (rc *RuleChain) Equivalent(a, b Mnemonic) bool {
	for _, rule := range rc.rules {
		if rule.Equivalent(a, b) {
			return true
		}
	}
	return false
}
