package wallet

const (
	P2PK = iota
	P2PKH
	P2MS
	P2SH_P2WPKH
	P2SH_P2WSH
	P2WPKH
	P2WSH
)

// EstimateTxSize makes an estimation of the virtual size of a Bitcoin
// transaction for which is required to specify the type of the inputs and
// outputs according to those of the Bitcoin standard (P2PK, P2PKH, P2MS,
// P2SH(P2WPKH), P2SH(P2WSH), P2WPKH, P2WSH).
// In case some inputs or outputs are of type P2MS, it is mandatory to pass
// their redeem script sizes as auxiliary slices in accordance.
func EstimateTxSize(
	inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
	outScriptTypes, outAuxiliaryRedeemScriptSize []int,
) int {
	baseSize := calcTxSize(
		false,
		inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
		outScriptTypes, outAuxiliaryRedeemScriptSize,
	)
	totalSize := calcTxSize(
		true,
		inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
		outScriptTypes, outAuxiliaryRedeemScriptSize,
	)

	weight := baseSize*3 + totalSize
	vsize := (weight + 3) / 4

	return vsize
}

func calcTxSize(
	withWitness bool,
	inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
	outScriptTypes, outAuxiliaryRedeemScriptSize []int,
) int {
	txSize := calcTxBaseSize(
		inScriptTypes, inAuxiliaryRedeemScriptSize,
		outScriptTypes, outAuxiliaryRedeemScriptSize,
	)
	if withWitness && hasWitnessInputs(inScriptTypes) {
		txSize += calcTxWitnessSize(inScriptTypes, inAuxiliaryWitnessSize)
	}
	return txSize
}

var (
	scripsigtSizeByScriptType = map[int]int{
		P2PK:        74,  // len + sig
		P2PKH:       108, // len + opcode + sig + opcode + pubkey
		P2SH_P2WPKH: 24,  // len + push + p2wpkh script
		P2SH_P2WSH:  36,  // len + push + p2wsh script
		P2WPKH:      1,   // no scriptsig, still len is serialized
		P2WSH:       1,   // no scriptsig
	}
	scriptPubKeySizeByScriptType = map[int]int{
		P2PK:        36, // len + pubkey + opcode
		P2PKH:       26, // len + opcodes (3) + hash(pubkey) + opcodes (2)
		P2SH_P2WPKH: 24, // len + opcodes (2) + hash(script) + opcode
		P2SH_P2WSH:  24, // len + opcodes (2) + hash(script) + opcode
		P2WPKH:      23, // len + opcodes (2) + hash(pubkey)
		P2WSH:       35, // len + opcodes (2) + hash(script)
	}
)

func calcTxBaseSize(
	inScriptTypes, inAuxiliaryRedeemScriptSize,
	outScriptTypes, outAuxiliaryRedeemScriptSize []int,
) int {
	// hash + index + sequence
	inBaseSize := 40
	insSize := 0
	auxCount := 0
	for _, scriptType := range inScriptTypes {
		scriptSize, ok := scripsigtSizeByScriptType[scriptType]
		if !ok {
			scriptSize = inAuxiliaryRedeemScriptSize[auxCount]
			auxCount++
		}
		insSize += inBaseSize + scriptSize
	}

	// value
	outBaseSize := 8
	outsSize := 0
	auxCount = 0
	for _, scriptType := range outScriptTypes {
		scriptSize, ok := scriptPubKeySizeByScriptType[scriptType]
		if !ok {
			scriptSize = outAuxiliaryRedeemScriptSize[auxCount]
			auxCount++
		}
		outsSize += outBaseSize + scriptSize
	}

	// version + locktime
	return 8 +
		varIntSerializeSize(uint64(len(inScriptTypes))) +
		varIntSerializeSize(uint64(len(outScriptTypes))) +
		insSize + outsSize
}

func calcTxWitnessSize(inScriptTypes, inAuxiliaryWitnessSize []int) int {
	// segwit marker + flag
	size := 2
	auxCount := 0
	for _, scriptType := range inScriptTypes {
		switch scriptType {
		case P2SH_P2WPKH, P2WPKH:
			// items count + len + sig + len + pubkey
			size += 1 + 1 + 72 + 1 + 33
		case P2SH_P2WSH, P2WSH:
			size += inAuxiliaryWitnessSize[auxCount]
			auxCount++
		default:
			// legacy inputs still serialize an empty witness
			size++
		}
	}
	return size
}

func hasWitnessInputs(inScriptTypes []int) bool {
	for _, scriptType := range inScriptTypes {
		switch scriptType {
		case P2SH_P2WPKH, P2SH_P2WSH, P2WPKH, P2WSH:
			return true
		}
	}
	return false
}
