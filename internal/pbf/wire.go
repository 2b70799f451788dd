package pbf

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from fileformat.proto and osmformat.proto
const (
	blobHeaderType     protowire.Number = 1
	blobHeaderDatasize protowire.Number = 3

	blobRaw      protowire.Number = 1
	blobRawSize  protowire.Number = 2
	blobZlibData protowire.Number = 3

	headerBBox             protowire.Number = 1
	headerRequiredFeatures protowire.Number = 4
	headerOptionalFeatures protowire.Number = 5
	headerWritingProgram   protowire.Number = 16

	bboxLeft   protowire.Number = 1
	bboxRight  protowire.Number = 2
	bboxTop    protowire.Number = 3
	bboxBottom protowire.Number = 4

	blockStringTable     protowire.Number = 1
	blockPrimitiveGroup  protowire.Number = 2
	blockGranularity     protowire.Number = 17
	blockDateGranularity protowire.Number = 18

	stringTableEntry protowire.Number = 1

	groupDense     protowire.Number = 2
	groupWays      protowire.Number = 3
	groupRelations protowire.Number = 4

	denseID      protowire.Number = 1
	denseInfo    protowire.Number = 5
	denseLat     protowire.Number = 8
	denseLon     protowire.Number = 9
	denseKeyVals protowire.Number = 10

	denseInfoVersion   protowire.Number = 1
	denseInfoTimestamp protowire.Number = 2
	denseInfoChangeset protowire.Number = 3
	denseInfoUID       protowire.Number = 4
	denseInfoUserSID   protowire.Number = 5
	denseInfoVisible   protowire.Number = 6

	infoVersion   protowire.Number = 1
	infoTimestamp protowire.Number = 2
	infoChangeset protowire.Number = 3
	infoUID       protowire.Number = 4
	infoUserSID   protowire.Number = 5
	infoVisible   protowire.Number = 6

	elementID   protowire.Number = 1
	elementKeys protowire.Number = 2
	elementVals protowire.Number = 3
	elementInfo protowire.Number = 4

	wayRefs protowire.Number = 8

	relationRoles  protowire.Number = 8
	relationMemIDs protowire.Number = 9
	relationTypes  protowire.Number = 10
)

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSintField(b []byte, num protowire.Number, v int64) []byte {
	return appendVarintField(b, num, protowire.EncodeZigZag(v))
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	return appendVarintField(b, num, protowire.EncodeBool(v))
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendPacked writes a packed repeated varint field. Empty slices are omitted.
func appendPacked(b []byte, num protowire.Number, vals []uint64) []byte {
	if len(vals) == 0 {
		return b
	}
	var inner []byte
	for _, v := range vals {
		inner = protowire.AppendVarint(inner, v)
	}
	return appendBytesField(b, num, inner)
}

// appendPackedSint writes a packed repeated zigzag field
func appendPackedSint(b []byte, num protowire.Number, vals []int64) []byte {
	if len(vals) == 0 {
		return b
	}
	var inner []byte
	for _, v := range vals {
		inner = protowire.AppendVarint(inner, protowire.EncodeZigZag(v))
	}
	return appendBytesField(b, num, inner)
}

// appendPackedDelta delta-codes vals and writes them as packed zigzag
func appendPackedDelta(b []byte, num protowire.Number, vals []int64) []byte {
	deltas := make([]int64, len(vals))
	var prev int64
	for i, v := range vals {
		deltas[i] = v - prev
		prev = v
	}
	return appendPackedSint(b, num, deltas)
}
