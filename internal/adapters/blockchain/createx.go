package blockchain

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Byte 21 of a CreateX salt
const (
	redeployProtectionOff byte = 0x00
	redeployProtectionOn  byte = 0x01
)

// GuardedSalt applies CreateX's salt guard: a salt prefixed with the sender
// is permissioned, a zero prefix with the protection flag set binds the
// salt to the chain, and any other salt is hashed.
func GuardedSalt(sender common.Address, chainID uint64, salt [32]byte) (common.Hash, error) {
	prefix := common.BytesToAddress(salt[:20])
	flag := salt[20]
	senderWord := common.LeftPadBytes(sender.Bytes(), 32)
	chainWord := make([]byte, 32)
	binary.BigEndian.PutUint64(chainWord[24:], chainID)

	switch {
	case prefix == sender && flag == redeployProtectionOn:
		return crypto.Keccak256Hash(senderWord, chainWord, salt[:]), nil
	case prefix == sender && flag == redeployProtectionOff:
		return crypto.Keccak256Hash(senderWord, salt[:]), nil
	case prefix == sender:
		return common.Hash{}, fmt.Errorf("invalid CreateX salt: protection flag %#x", flag)
	case prefix == (common.Address{}) && flag == redeployProtectionOn:
		return crypto.Keccak256Hash(chainWord, salt[:]), nil
	case prefix == (common.Address{}) && flag != redeployProtectionOff:
		return common.Hash{}, fmt.Errorf("invalid CreateX salt: protection flag %#x", flag)
	default:
		return crypto.Keccak256Hash(salt[:]), nil
	}
}

// PredictAddress returns the address deployCreate2(salt, initCode) sent by
// sender creates on the given chain
func PredictAddress(sender common.Address, chainID uint64, salt [32]byte, initCode []byte) (common.Address, error) {
	guarded, err := GuardedSalt(sender, chainID, salt)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.CreateAddress2(CreateXAddress, guarded, crypto.Keccak256(initCode)), nil
}
