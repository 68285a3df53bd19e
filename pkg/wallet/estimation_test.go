package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTxSize(t *testing.T) {
	tests := []struct {
		name           string
		inScriptTypes  []int
		outScriptTypes []int
		expectedSize   int
	}{
		{
			// 1-in 2-out native segwit spend measures 141 vbytes on chain
			name:           "p2wpkh 1 in 2 out",
			inScriptTypes:  []int{P2WPKH},
			outScriptTypes: []int{P2WPKH, P2WPKH},
			expectedSize:   141,
		},
		{
			// 1-in 2-out legacy spend measures 226 bytes on chain
			name:           "p2pkh 1 in 2 out",
			inScriptTypes:  []int{P2PKH},
			outScriptTypes: []int{P2PKH, P2PKH},
			expectedSize:   226,
		},
		{
			name:           "p2sh-p2wpkh 2 in 1 out",
			inScriptTypes:  []int{P2SH_P2WPKH, P2SH_P2WPKH},
			outScriptTypes: []int{P2SH_P2WPKH},
			expectedSize:   225,
		},
	}
	for _, tt := range tests {
		size := EstimateTxSize(
			tt.inScriptTypes, nil, nil,
			tt.outScriptTypes, nil,
		)
		assert.GreaterOrEqual(t, size, tt.expectedSize, tt.name)
		assert.LessOrEqual(t, size, tt.expectedSize+5, tt.name)
	}
}
