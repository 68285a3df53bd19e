package wallet

import "strings"

var entropySizeByWordCount = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

type NewMnemonicOpts struct {
	WordCount int
}

func (o NewMnemonicOpts) validate() error {
	if o.WordCount == 0 {
		return nil
	}
	if _, ok := entropySizeByWordCount[o.WordCount]; !ok {
		return ErrInvalidWordCount
	}
	return nil
}

// NewMnemonic returns a new BIP39 mnemonic as a list of words. Defaults to
// 12 words if WordCount is not specified.
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.WordCount == 0 {
		opts.WordCount = 12
	}

	return generateMnemonic(entropySizeByWordCount[opts.WordCount])
}

// IsMnemonicValid returns whether the given list of words is a valid BIP39
// mnemonic, checksum included
func IsMnemonicValid(mnemonic []string) bool {
	if _, ok := entropySizeByWordCount[len(mnemonic)]; !ok {
		return false
	}
	return isMnemonicValid(mnemonic)
}

// SplitMnemonic splits a mnemonic string into its words, ignoring any
// extra whitespace between them
func SplitMnemonic(mnemonic string) []string {
	return strings.Fields(mnemonic)
}
