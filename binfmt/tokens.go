package binfmt

// Node tokens of the lithium through magnesium generations. Each node is a
// token followed by its path argument.
const (
	tokLeaf            = 0x01
	tokLeafSet         = 0x02
	tokLeafSetEntry    = 0x03
	tokContainer       = 0x04
	tokUnkeyedList     = 0x05
	tokUnkeyedListItem = 0x06
	tokMap             = 0x07
	tokMapEntry        = 0x08
	tokOrderedMap      = 0x09
	tokChoice          = 0x0A
	tokAugmentation    = 0x0B
	tokAnyXML          = 0x0C
	tokEndNode         = 0x0D
	tokOrderedLeafSet  = 0x0E
)

// Dictionary tokens of the lithium and neon-sr2 generations.
const (
	isStringCode   = 0x01
	isStringValue  = 0x02
	isNullValue    = 0x03
	isQNameCode    = 0x04
	isQNameValue   = 0x05
	isAugmentCode  = 0x06
	isAugmentValue = 0x07
	isModuleCode   = 0x08
	isModuleValue  = 0x09
)

// Value types of the lithium and neon-sr2 generations.
const (
	vtShort       = 0x01
	vtByte        = 0x02
	vtInt         = 0x03
	vtLong        = 0x04
	vtBool        = 0x05
	vtQName       = 0x06
	vtBits        = 0x07
	vtIdentifier  = 0x08
	vtString      = 0x09
	vtBigInteger  = 0x0A
	vtDecimal     = 0x0B
	vtBinary      = 0x0C
	vtStringBytes = 0x0D
	vtEmpty       = 0x0E
)

// Path argument types of the lithium and neon-sr2 generations.
const (
	paAugmentation    = 0x01
	paNodeIdentifier  = 0x02
	paNodeWithValue   = 0x03
	paNodeWithPredics = 0x04
)

// Compact value tags, shared by sodium-sr1 and later. Counts of bits, path
// arguments and binary bytes up to a small limit live in the tag itself.
const (
	cvFalse       = 0x00
	cvTrue        = 0x01
	cvEmpty       = 0x02
	cvInt8        = 0x03
	cvInt16       = 0x04
	cvInt32       = 0x05
	cvInt64       = 0x06
	cvUint8       = 0x07
	cvUint16      = 0x08
	cvUint32      = 0x09
	cvUint64      = 0x0A
	cvStringEmpty = 0x0B
	cvString1B    = 0x0C
	cvString2B    = 0x0D
	cvString4B    = 0x0E
	cvStringRef1B = 0x0F
	cvStringRef2B = 0x10
	cvStringRef4B = 0x11
	cvQName       = 0x12
	cvQNameRef1B  = 0x13
	cvQNameRef2B  = 0x14
	cvQNameRef4B  = 0x15
	cvModRef1B    = 0x16
	cvModRef2B    = 0x17
	cvModRef4B    = 0x18
	cvDecimal64   = 0x19
	cvInt8Zero    = 0x1A
	cvInt16Zero   = 0x1B
	cvInt32Zero   = 0x1C
	cvInt64Zero   = 0x1D
	cvUint8Zero   = 0x1E
	cvUint16Zero  = 0x1F
	cvUint32Zero  = 0x20
	cvUint64Zero  = 0x21
	cvInt32In2    = 0x22
	cvInt64In4    = 0x23
	cvUint32In2   = 0x24
	cvUint64In4   = 0x25
	cvBigInteger  = 0x26
	cvBits1B      = 0x27
	cvBits2B      = 0x28
	cvBits4B      = 0x29
	cvBinary1B    = 0x2A
	cvBinary2B    = 0x2B
	cvBinary4B    = 0x2C
	cvIdentifier  = 0x2D

	// 0x40 + n for n < 29 bits.
	cvBits0    = 0x40
	cvBitsMax  = 28
	cvBits1Off = cvBitsMax + 1
	cvBits2Off = cvBits1Off + 256

	// 0x60 + n for n < 32 path arguments.
	cvIdentifier0   = 0x60
	cvIdentifierMax = 31

	// 0x80 + n for n < 128 bytes.
	cvBinary0    = 0x80
	cvBinaryMax  = 127
	cvBinary1Off = cvBinaryMax + 1
	cvBinary2Off = cvBinary1Off + 256
)

// Compact path argument header: type in the low two bits, QName coding in
// the next two, a size in the high nibble.
const (
	cpTypeMask       = 0x03
	cpNodeIdentifier = 0x00
	cpWithPredicates = 0x01
	cpWithValue      = 0x02
	cpAugmentation   = 0x03

	cpQNameMask  = 0x0C
	cpQNameDef   = 0x00
	cpQNameRef1B = 0x04
	cpQNameRef2B = 0x08
	cpQNameRef4B = 0x0C

	cpSizeShift = 4
	cpSizeMask  = 0xF0
	cpSizeMax   = 12
	cpSize1B    = 0xD0
	cpSize2B    = 0xE0
	cpSize4B    = 0xF0
)

// Potassium node header: type in the low nibble, identifier addressing in
// the next two bits, predicate count coding in the top two.
const (
	pnTypeMask       = 0x0F
	pnEnd            = 0x00
	pnLeaf           = 0x01
	pnContainer      = 0x02
	pnUnkeyedList    = 0x03
	pnMap            = 0x04
	pnOrderedMap     = 0x05
	pnLeafSet        = 0x06
	pnOrderedLeafSet = 0x07
	pnChoice         = 0x08
	pnAugmentation   = 0x09
	pnAnyXML         = 0x0A
	pnListEntry      = 0x0B
	pnLeafSetEntry   = 0x0C
	pnMapEntry       = 0x0D

	pnAddrMask     = 0x30
	pnAddrParent   = 0x00
	pnAddrDefine   = 0x10
	pnAddrLookup1B = 0x20
	pnAddrLookup4B = 0x30

	pnPredicateMask = 0xC0
	pnPredicateZero = 0x00
	pnPredicateOne  = 0x40
	pnPredicate1B   = 0x80
	pnPredicate4B   = 0xC0
)
