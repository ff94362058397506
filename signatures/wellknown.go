package signatures

import "github.com/oy3o/hotmarsh/types"

// Frequently used signatures.
var (
	// EOAConstructor is ExternallyOwnedAccount(BigInteger, String), written as a bare selector.
	EOAConstructor = MustConstructor(types.EOA, types.BigInteger, types.String)

	ReceiveInt        = mustMethod(NewVoidMethod(types.PayableContract, "receive", types.Int))
	ReceiveLong       = mustMethod(NewVoidMethod(types.PayableContract, "receive", types.Long))
	ReceiveBigInteger = mustMethod(NewVoidMethod(types.PayableContract, "receive", types.BigInteger))

	Balance        = mustMethod(NewNonVoidMethod(types.Contract, "balance", types.BigInteger))
	Nonce          = mustMethod(NewNonVoidMethod(types.Account, "nonce", types.BigInteger))
	PublicKey      = mustMethod(NewNonVoidMethod(types.Account, "publicKey", types.String))
	GetChainID     = mustMethod(NewNonVoidMethod(types.Manifest, "getChainId", types.String))
	GetGenesisTime = mustMethod(NewNonVoidMethod(types.Manifest, "getGenesisTime", types.String))
	GetGamete      = mustMethod(NewNonVoidMethod(types.Manifest, "getGamete", types.Gamete))
	GetGasStation  = mustMethod(NewNonVoidMethod(types.Manifest, "getGasStation", types.GasStation))
	GetGasPrice    = mustMethod(NewNonVoidMethod(types.GasStation, "getGasPrice", types.BigInteger))
)

// Frequently used fields.
var (
	BalanceField      = FieldSignature{DefiningClass: types.Contract, Name: "balance", Type: types.BigInteger}
	EOANonceField     = FieldSignature{DefiningClass: types.EOA, Name: "nonce", Type: types.BigInteger}
	EOAPublicKeyField = FieldSignature{DefiningClass: types.EOA, Name: "publicKey", Type: types.String}
	TreeIntMapSize    = FieldSignature{DefiningClass: types.StorageTreeIntMapNode, Name: "size", Type: types.Int}
)
