// Package classify turns instruction words into mnemonics and decides
// which mnemonic differences are only the result of relocation.
package classify

import (
	"fmt"
	"strings"
)

// Mnemonic is the normalized text of one decoded instruction.
type Mnemonic string

// Decoder renders a single instruction word. It returns an error for
// words it does not recognise.
type Decoder interface {
	Decode(code uint32) (string, error)
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(code uint32) (string, error)

func (f DecoderFunc) Decode(code uint32) (string, error) { return f(code) }

// Illegal is the mnemonic used for words the decoder rejects.
func Illegal(code uint32) Mnemonic {
	return Mnemonic(fmt.Sprintf("<illegal; found: 0x%08X>", code))
}

// IsIllegal reports whether m is the illegal-instruction sentinel.
func (m Mnemonic) IsIllegal() bool {
	return strings.HasPrefix(string(m), "<illegal")
}

// Classifier decodes words and applies equivalence rules to mismatches.
type Classifier struct {
	decoder Decoder
	rules   Rule
}

// New returns a classifier using the relocation rule.
func New(decoder Decoder) *Classifier {
	return &Classifier{decoder: decoder, rules: NewRuleChain(RelocationRule{})}
}

// NewStrict returns a classifier that only accepts identical mnemonics.
func NewStrict(decoder Decoder) *Classifier {
	return &Classifier{decoder: decoder, rules: NewRuleChain()}
}

// NewWithRules returns a classifier with a custom rule set.
func NewWithRules(decoder Decoder, rules ...Rule) *Classifier {
	return &Classifier{decoder: decoder, rules: NewRuleChain(rules...)}
}

// Decode never fails: unknown words become the illegal sentinel so
// they still take part in the comparison.
func (c *Classifier) Decode(code uint32) Mnemonic {
	text, err := c.decoder.Decode(code)
	if err != nil {
		return Illegal(code)
	}
	return Mnemonic(text)
}

// Equivalent reports whether two differing mnemonics should be treated
// as the same instruction.
func (c *Classifier) Equivalent(a, b Mnemonic) bool {
	return c.rules.Equivalent(a, b)
}
