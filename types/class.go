package types

import (
	"fmt"
	"strings"

	"github.com/oy3o/hotmarsh"
	"github.com/puzpuzpuz/xsync/v4"
)

// ClassSelector tags a class type in the stream. These values only have meaning
// where a storage type is expected; code signatures use their own table.
type ClassSelector uint8

const (
	SelClass                 ClassSelector = 8 // any other class, full name follows
	SelCodePackage           ClassSelector = 9 // io.takamaka.code.
	SelLangPackage           ClassSelector = 10
	SelUtilPackage           ClassSelector = 11
	SelStorageListView       ClassSelector = 12
	SelStorageTreeMapNode    ClassSelector = 13
	SelStorageLinkedListNode ClassSelector = 14
	SelEOA                   ClassSelector = 15
	SelGasPriceUpdate        ClassSelector = 16
	SelString                ClassSelector = 17
	SelAccount               ClassSelector = 18
	SelManifest              ClassSelector = 19
	SelContract              ClassSelector = 20
	SelObject                ClassSelector = 22
	SelStorage               ClassSelector = 23
	SelGenericGasStation     ClassSelector = 24
	SelEvent                 ClassSelector = 25
	SelBigInteger            ClassSelector = 26
	SelPayableContract       ClassSelector = 27
	SelStorageMapView        ClassSelector = 28
	SelStorageTreeMap        ClassSelector = 29
	SelStorageTreeMapBlack   ClassSelector = 30
	SelStorageTreeMapRed     ClassSelector = 31
	SelUnsignedBigInteger    ClassSelector = 32
	SelERC20                 ClassSelector = 33
	SelTokensPackage         ClassSelector = 34
	SelIERC20                ClassSelector = 35
	SelStorageTreeArray      ClassSelector = 36
	SelStorageTreeArrayNode  ClassSelector = 37
	SelStorageTreeIntMapNode ClassSelector = 38
	SelStorageTreeSet        ClassSelector = 39
	SelGasStation            ClassSelector = 40
)

// Package prefixes with a selector of their own.
const (
	CodePackage   = "io.takamaka.code."
	LangPackage   = CodePackage + "lang."
	UtilPackage   = CodePackage + "util."
	TokensPackage = CodePackage + "tokens."
)

// Class names with a dedicated selector, plus a few frequently used ones.
const (
	ObjectName                = "java.lang.Object"
	StringName                = "java.lang.String"
	BigIntegerName            = "java.math.BigInteger"
	UnsignedBigIntegerName    = CodePackage + "math.UnsignedBigInteger"
	ERC20Name                 = TokensPackage + "ERC20"
	IERC20Name                = TokensPackage + "IERC20"
	GasPriceUpdateName        = "io.takamaka.code.governance.GasPriceUpdate"
	ManifestName              = "io.takamaka.code.governance.Manifest"
	GasStationName            = "io.takamaka.code.governance.GasStation"
	GenericGasStationName     = "io.takamaka.code.governance.GenericGasStation"
	EOAName                   = LangPackage + "ExternallyOwnedAccount"
	ContractName              = LangPackage + "Contract"
	GameteName                = LangPackage + "Gamete"
	AccountName               = LangPackage + "Account"
	StorageName               = LangPackage + "Storage"
	EventName                 = LangPackage + "Event"
	PayableContractName       = LangPackage + "PayableContract"
	StorageListViewName       = UtilPackage + "StorageListView"
	StorageMapViewName        = UtilPackage + "StorageMapView"
	StorageTreeMapName        = UtilPackage + "StorageTreeMap"
	StorageTreeMapNodeName    = UtilPackage + "StorageTreeMap$Node"
	StorageTreeMapBlackName   = UtilPackage + "StorageTreeMap$BlackNode"
	StorageTreeMapRedName     = UtilPackage + "StorageTreeMap$RedNode"
	StorageLinkedListNodeName = UtilPackage + "StorageLinkedList$Node"
	StorageTreeArrayName      = UtilPackage + "StorageTreeArray"
	StorageTreeArrayNodeName  = UtilPackage + "StorageTreeArray$Node"
	StorageTreeIntMapNodeName = UtilPackage + "StorageTreeIntMap$Node"
	StorageTreeSetName        = UtilPackage + "StorageTreeSet"
)

// ClassType is a storage type named by a fully-qualified class name.
// Inner classes use the binary name with '$'; the dotted spelling is accepted too.
type ClassType struct {
	name string
}

var (
	Object                = ClassType{ObjectName}
	String                = ClassType{StringName}
	BigInteger            = ClassType{BigIntegerName}
	UnsignedBigInteger    = ClassType{UnsignedBigIntegerName}
	ERC20                 = ClassType{ERC20Name}
	IERC20                = ClassType{IERC20Name}
	GasPriceUpdate        = ClassType{GasPriceUpdateName}
	Manifest              = ClassType{ManifestName}
	GasStation            = ClassType{GasStationName}
	GenericGasStation     = ClassType{GenericGasStationName}
	EOA                   = ClassType{EOAName}
	Contract              = ClassType{ContractName}
	Gamete                = ClassType{GameteName}
	Account               = ClassType{AccountName}
	Storage               = ClassType{StorageName}
	Event                 = ClassType{EventName}
	PayableContract       = ClassType{PayableContractName}
	StorageListView       = ClassType{StorageListViewName}
	StorageMapView        = ClassType{StorageMapViewName}
	StorageTreeMap        = ClassType{StorageTreeMapName}
	StorageTreeMapNode    = ClassType{StorageTreeMapNodeName}
	StorageTreeMapBlack   = ClassType{StorageTreeMapBlackName}
	StorageTreeMapRed     = ClassType{StorageTreeMapRedName}
	StorageLinkedListNode = ClassType{StorageLinkedListNodeName}
	StorageTreeArray      = ClassType{StorageTreeArrayName}
	StorageTreeArrayNode  = ClassType{StorageTreeArrayNodeName}
	StorageTreeIntMapNode = ClassType{StorageTreeIntMapNodeName}
	StorageTreeSet        = ClassType{StorageTreeSetName}
)

// NewClassType returns the class type with the given name.
func NewClassType(name string) (ClassType, error) {
	if name == "" {
		return ClassType{}, fmt.Errorf("%w: empty class name", ErrUnknownType)
	}
	return ClassType{name: name}, nil
}

func (t ClassType) Name() string   { return t.name }
func (t ClassType) String() string { return t.name }

// Equal reports whether t and u name the same class.
func (t ClassType) Equal(u ClassType) bool { return t.name == u.name }

func (ClassType) isStorageType() {}

// Selector returns the selector t is written with.
func (t ClassType) Selector() ClassSelector {
	return resolve(t.name).sel
}

// Into writes the selector of t, followed by the part of the name the selector
// does not imply, if any.
func (t ClassType) Into(c *hotmarsh.Context) {
	if t.name == "" {
		c.Failf(ErrUnknownType, "empty class name")
		return
	}
	res := resolve(t.name)
	c.WriteUint8(uint8(res.sel))
	if res.tail {
		c.WriteStringShared(t.name[len(res.prefix):])
	}
}

type resolution struct {
	sel    ClassSelector
	prefix string // stripped from the name when tail is set
	tail   bool   // the rest of the name follows as a shared string
}

// exactNames is checked first, in order, before any prefix.
var exactNames = []struct {
	name string
	sel  ClassSelector
}{
	{BigIntegerName, SelBigInteger},
	{UnsignedBigIntegerName, SelUnsignedBigInteger},
	{GasPriceUpdateName, SelGasPriceUpdate},
	{ERC20Name, SelERC20},
	{IERC20Name, SelIERC20},
	{StringName, SelString},
	{AccountName, SelAccount},
	{ManifestName, SelManifest},
	{GasStationName, SelGasStation},
	{StorageTreeArrayName, SelStorageTreeArray},
	{StorageTreeArrayNodeName, SelStorageTreeArrayNode},
	{ObjectName, SelObject},
	{ContractName, SelContract},
	{StorageName, SelStorage},
	{PayableContractName, SelPayableContract},
	{StorageMapViewName, SelStorageMapView},
	{StorageTreeMapName, SelStorageTreeMap},
	{StorageTreeMapBlackName, SelStorageTreeMapBlack},
	{StorageTreeMapRedName, SelStorageTreeMapRed},
	{StorageTreeIntMapNodeName, SelStorageTreeIntMapNode},
	{StorageTreeSetName, SelStorageTreeSet},
	{StorageListViewName, SelStorageListView},
	{StorageTreeMapNodeName, SelStorageTreeMapNode},
	{StorageLinkedListNodeName, SelStorageLinkedListNode},
	{EOAName, SelEOA},
	{GenericGasStationName, SelGenericGasStation},
	{EventName, SelEvent},
}

// packagePrefixes is checked in order after exactNames; the generic package comes last.
var packagePrefixes = []struct {
	prefix string
	sel    ClassSelector
}{
	{LangPackage, SelLangPackage},
	{UtilPackage, SelUtilPackage},
	{TokensPackage, SelTokensPackage},
	{CodePackage, SelCodePackage},
}

// resolutions caches resolve. Resolution depends on the name only.
var resolutions = xsync.NewMap[string, resolution]()

func resolve(name string) resolution {
	if res, ok := resolutions.Load(name); ok {
		return res
	}
	res := resolveUncached(name)
	resolutions.Store(name, res)
	return res
}

func resolveUncached(name string) resolution {
	binary := strings.ReplaceAll(name, ".Node", "$Node")
	binary = strings.ReplaceAll(binary, ".BlackNode", "$BlackNode")
	binary = strings.ReplaceAll(binary, ".RedNode", "$RedNode")
	for _, e := range exactNames {
		if e.name == name || e.name == binary {
			return resolution{sel: e.sel}
		}
	}
	for _, p := range packagePrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return resolution{sel: p.sel, prefix: p.prefix, tail: true}
		}
	}
	return resolution{sel: SelClass, tail: true}
}

// classNameOf returns the name implied by a selector that needs no tail.
func classNameOf(sel ClassSelector) (string, bool) {
	for _, e := range exactNames {
		if e.sel == sel {
			return e.name, true
		}
	}
	return "", false
}

// prefixOf returns the package prefix of a package selector.
func prefixOf(sel ClassSelector) (string, bool) {
	if sel == SelClass {
		return "", true
	}
	for _, p := range packagePrefixes {
		if p.sel == sel {
			return p.prefix, true
		}
	}
	return "", false
}
