package pbf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"google.golang.org/protobuf/encoding/protowire"
)

// Block types of the PBF file format
const (
	BlockHeader = "OSMHeader"
	BlockData   = "OSMData"
)

const (
	// granularity in nanodegrees, giving 1e-7 degree precision
	granularity = 100
	// date granularity in milliseconds, giving one second precision
	dateGranularity = 1000

	// DefaultBlockSize is the maximum number of entities per primitive block
	DefaultBlockSize = 8000
)

var requiredFeatures = []string{"OsmSchema-V0.6", "DenseNodes"}

// Encoder writes OSM entities to the PBF format.
// All nodes are written first, then ways, then relations.
type Encoder struct {
	w         io.Writer
	program   string
	compress  bool
	blockSize int
	bound     *orb.Bound
}

// Option configures an Encoder
type Option func(*Encoder)

// WithWritingProgram sets the writing program recorded in the file header
func WithWritingProgram(program string) Option {
	return func(e *Encoder) {
		e.program = program
	}
}

// WithCompression enables or disables zlib compression of blobs
func WithCompression(enable bool) Option {
	return func(e *Encoder) {
		e.compress = enable
	}
}

// WithBound sets the bounding box recorded in the file header
func WithBound(b orb.Bound) Option {
	return func(e *Encoder) {
		e.bound = &b
	}
}

// WithBlockSize sets the maximum number of entities per primitive block
func WithBlockSize(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.blockSize = n
		}
	}
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	e := &Encoder{
		w:         w,
		program:   "gurka-go",
		compress:  true,
		blockSize: DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes the header followed by all entities of o
func (e *Encoder) Encode(o *osm.OSM) error {
	if err := e.writeBlob(BlockHeader, e.headerBlock()); err != nil {
		return fmt.Errorf("failed to write header block: %w", err)
	}

	for start := 0; start < len(o.Nodes); start += e.blockSize {
		end := min(start+e.blockSize, len(o.Nodes))
		if err := e.writeBlob(BlockData, encodeNodes(o.Nodes[start:end])); err != nil {
			return fmt.Errorf("failed to write node block: %w", err)
		}
	}
	for start := 0; start < len(o.Ways); start += e.blockSize {
		end := min(start+e.blockSize, len(o.Ways))
		if err := e.writeBlob(BlockData, encodeWays(o.Ways[start:end])); err != nil {
			return fmt.Errorf("failed to write way block: %w", err)
		}
	}
	for start := 0; start < len(o.Relations); start += e.blockSize {
		end := min(start+e.blockSize, len(o.Relations))
		if err := e.writeBlob(BlockData, encodeRelations(o.Relations[start:end])); err != nil {
			return fmt.Errorf("failed to write relation block: %w", err)
		}
	}

	return nil
}

func (e *Encoder) headerBlock() []byte {
	var b []byte
	if e.bound != nil {
		var bbox []byte
		bbox = appendSintField(bbox, bboxLeft, toNano(e.bound.Min.Lon()))
		bbox = appendSintField(bbox, bboxRight, toNano(e.bound.Max.Lon()))
		bbox = appendSintField(bbox, bboxTop, toNano(e.bound.Max.Lat()))
		bbox = appendSintField(bbox, bboxBottom, toNano(e.bound.Min.Lat()))
		b = appendBytesField(b, headerBBox, bbox)
	}
	for _, f := range requiredFeatures {
		b = appendStringField(b, headerRequiredFeatures, f)
	}
	if e.program != "" {
		b = appendStringField(b, headerWritingProgram, e.program)
	}
	return b
}

// writeBlob frames a block as BlobHeader length, BlobHeader and Blob
func (e *Encoder) writeBlob(blockType string, data []byte) error {
	var blob []byte
	if e.compress {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("compress block: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zlib writer: %w", err)
		}
		blob = appendVarintField(blob, blobRawSize, uint64(len(data)))
		blob = appendBytesField(blob, blobZlibData, buf.Bytes())
	} else {
		blob = appendBytesField(blob, blobRaw, data)
	}

	var header []byte
	header = appendStringField(header, blobHeaderType, blockType)
	header = appendVarintField(header, blobHeaderDatasize, uint64(len(blob)))

	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(header)))

	for _, chunk := range [][]byte{size[:], header, blob} {
		if _, err := e.w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

// stringTable collects the strings of one primitive block. Index 0 is
// reserved for the empty string, used as delimiter in dense key/vals.
type stringTable struct {
	index   map[string]uint32
	entries []string
}

func newStringTable() *stringTable {
	return &stringTable{
		index:   map[string]uint32{"": 0},
		entries: []string{""},
	}
}

func (st *stringTable) id(s string) uint32 {
	if i, ok := st.index[s]; ok {
		return i
	}
	i := uint32(len(st.entries))
	st.index[s] = i
	st.entries = append(st.entries, s)
	return i
}

func (st *stringTable) bytes() []byte {
	var b []byte
	for _, s := range st.entries {
		b = appendStringField(b, stringTableEntry, s)
	}
	return b
}

func encodeNodes(nodes osm.Nodes) []byte {
	st := newStringTable()

	n := len(nodes)
	ids := make([]int64, n)
	lats := make([]int64, n)
	lons := make([]int64, n)
	versions := make([]uint64, n)
	timestamps := make([]int64, n)
	changesets := make([]int64, n)
	uids := make([]int64, n)
	userSIDs := make([]int64, n)
	visible := make([]uint64, n)
	var keyVals []uint64

	for i, node := range nodes {
		ids[i] = int64(node.ID)
		lats[i] = toGranular(node.Lat)
		lons[i] = toGranular(node.Lon)
		versions[i] = uint64(node.Version)
		timestamps[i] = toDate(node.Timestamp)
		changesets[i] = int64(node.ChangesetID)
		uids[i] = int64(node.UserID)
		userSIDs[i] = int64(st.id(node.User))
		visible[i] = protowire.EncodeBool(node.Visible)
		for _, tag := range node.Tags {
			keyVals = append(keyVals, uint64(st.id(tag.Key)), uint64(st.id(tag.Value)))
		}
		keyVals = append(keyVals, 0)
	}

	var info []byte
	info = appendPacked(info, denseInfoVersion, versions)
	info = appendPackedDelta(info, denseInfoTimestamp, timestamps)
	info = appendPackedDelta(info, denseInfoChangeset, changesets)
	info = appendPackedDelta(info, denseInfoUID, uids)
	info = appendPackedDelta(info, denseInfoUserSID, userSIDs)
	info = appendPacked(info, denseInfoVisible, visible)

	var dense []byte
	dense = appendPackedDelta(dense, denseID, ids)
	dense = appendBytesField(dense, denseInfo, info)
	dense = appendPackedDelta(dense, denseLat, lats)
	dense = appendPackedDelta(dense, denseLon, lons)
	dense = appendPacked(dense, denseKeyVals, keyVals)

	return primitiveBlock(st, appendBytesField(nil, groupDense, dense))
}

func encodeWays(ways osm.Ways) []byte {
	st := newStringTable()

	var group []byte
	for _, way := range ways {
		var b []byte
		b = appendVarintField(b, elementID, uint64(way.ID))
		b = appendTags(b, st, way.Tags)
		b = appendBytesField(b, elementInfo, encodeInfo(st, way.Version, toDate(way.Timestamp), int64(way.ChangesetID), int64(way.UserID), way.User, way.Visible))

		refs := make([]int64, len(way.Nodes))
		for i, wn := range way.Nodes {
			refs[i] = int64(wn.ID)
		}
		b = appendPackedDelta(b, wayRefs, refs)

		group = appendBytesField(group, groupWays, b)
	}

	return primitiveBlock(st, group)
}

func encodeRelations(relations osm.Relations) []byte {
	st := newStringTable()

	var group []byte
	for _, rel := range relations {
		var b []byte
		b = appendVarintField(b, elementID, uint64(rel.ID))
		b = appendTags(b, st, rel.Tags)
		b = appendBytesField(b, elementInfo, encodeInfo(st, rel.Version, toDate(rel.Timestamp), int64(rel.ChangesetID), int64(rel.UserID), rel.User, rel.Visible))

		roles := make([]uint64, len(rel.Members))
		memIDs := make([]int64, len(rel.Members))
		types := make([]uint64, len(rel.Members))
		for i, m := range rel.Members {
			roles[i] = uint64(st.id(m.Role))
			memIDs[i] = m.Ref
			types[i] = memberType(m.Type)
		}
		b = appendPacked(b, relationRoles, roles)
		b = appendPackedDelta(b, relationMemIDs, memIDs)
		b = appendPacked(b, relationTypes, types)

		group = appendBytesField(group, groupRelations, b)
	}

	return primitiveBlock(st, group)
}

// primitiveBlock wraps the framed members of one primitive group together
// with the string table they reference
func primitiveBlock(st *stringTable, group []byte) []byte {
	var b []byte
	b = appendBytesField(b, blockStringTable, st.bytes())
	b = appendBytesField(b, blockPrimitiveGroup, group)
	b = appendVarintField(b, blockGranularity, granularity)
	b = appendVarintField(b, blockDateGranularity, dateGranularity)
	return b
}

func appendTags(b []byte, st *stringTable, tags osm.Tags) []byte {
	keys := make([]uint64, len(tags))
	vals := make([]uint64, len(tags))
	for i, tag := range tags {
		keys[i] = uint64(st.id(tag.Key))
		vals[i] = uint64(st.id(tag.Value))
	}
	b = appendPacked(b, elementKeys, keys)
	return appendPacked(b, elementVals, vals)
}

func encodeInfo(st *stringTable, version int, timestamp, changeset, uid int64, user string, visible bool) []byte {
	var b []byte
	b = appendVarintField(b, infoVersion, uint64(version))
	b = appendVarintField(b, infoTimestamp, uint64(timestamp))
	if changeset != 0 {
		b = appendVarintField(b, infoChangeset, uint64(changeset))
	}
	if uid != 0 {
		b = appendVarintField(b, infoUID, uint64(uid))
	}
	if user != "" {
		b = appendVarintField(b, infoUserSID, uint64(st.id(user)))
	}
	return appendBoolField(b, infoVisible, visible)
}

func memberType(t osm.Type) uint64 {
	switch t {
	case osm.TypeWay:
		return 1
	case osm.TypeRelation:
		return 2
	default:
		return 0
	}
}

func toDate(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli() / dateGranularity
}

func toGranular(deg float64) int64 {
	return int64(math.Round(deg * 1e9 / granularity))
}

func toNano(deg float64) int64 {
	return int64(math.Round(deg * 1e9))
}
