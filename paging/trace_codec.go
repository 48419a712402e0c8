package paging

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// CompressionType represents the compression algorithm used for a trace archive
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0
	CompressionLZ4    CompressionType = 1
	CompressionSnappy CompressionType = 2

	// CompressionBest tries every algorithm and keeps the smallest output.
	// It never appears in an archive header.
	CompressionBest CompressionType = 0xFF
)

// ParseCompression resolves a compression name (none, lz4, snappy, best)
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	case "best":
		return CompressionBest, nil
	}
	return 0, NewSimError(ErrCodeUnsupportedCompression, "ParseCompression",
		fmt.Sprintf("unknown compression %q", name), nil)
}

func (t CompressionType) String() string {
	switch t {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	case CompressionBest:
		return "best"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Archive header layout:
// [0-1]: Magic number (0x5054)
// [2]: Compression type (0=none, 1=LZ4, 2=Snappy)
// [3]: Encoding version
// [4-7]: Encoded (uncompressed) size
// [8-11]: Payload size
// [12-15]: CRC32 (IEEE) of the encoded trace
// [16+]: Payload

const (
	TraceArchiveMagic      = 0x5054
	TraceArchiveHeaderSize = 16
	traceEncodingVersion   = 1
)

const (
	stepFlagFault   = 1 << 0
	stepFlagEvicted = 1 << 1
)

// EncodeTrace serializes a trace into a compact varint encoding
func EncodeTrace(t *Trace) []byte {
	buf := make([]byte, 0, 16+len(t.Steps)*(4+t.Capacity*2))

	buf = binary.AppendUvarint(buf, uint64(len(t.Policy)))
	buf = append(buf, t.Policy...)
	buf = binary.AppendUvarint(buf, uint64(t.Capacity))
	buf = binary.AppendUvarint(buf, uint64(t.Faults))
	buf = binary.AppendUvarint(buf, uint64(len(t.Steps)))

	for _, s := range t.Steps {
		buf = binary.AppendVarint(buf, int64(s.Reference))

		var flags byte
		if s.Fault {
			flags |= stepFlagFault
		}
		if s.Evicted.Valid {
			flags |= stepFlagEvicted
		}
		buf = append(buf, flags)
		if s.Evicted.Valid {
			buf = binary.AppendVarint(buf, int64(s.Evicted.Page))
		}
		buf = binary.AppendVarint(buf, int64(s.SlotIndex))

		for _, f := range s.Frames {
			if !f.Valid {
				buf = append(buf, 0)
				continue
			}
			buf = append(buf, 1)
			buf = binary.AppendVarint(buf, int64(f.Page))
		}
	}

	return buf
}

// traceReader walks an encoded trace, remembering the first error
type traceReader struct {
	data []byte
	off  int
	err  error
}

func (r *traceReader) fail(reason string) {
	if r.err == nil {
		r.err = ErrCorruptTrace("DecodeTrace", fmt.Sprintf("%s at offset %d", reason, r.off), nil)
	}
}

func (r *traceReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		r.fail("bad uvarint")
		return 0
	}
	r.off += n
	return v
}

func (r *traceReader) varint() int64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Varint(r.data[r.off:])
	if n <= 0 {
		r.fail("bad varint")
		return 0
	}
	r.off += n
	return v
}

func (r *traceReader) readByte() byte {
	if r.err != nil {
		return 0
	}
	if r.off >= len(r.data) {
		r.fail("unexpected end of data")
		return 0
	}
	b := r.data[r.off]
	r.off++
	return b
}

func (r *traceReader) readBytes(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.data)-r.off) {
		r.fail("unexpected end of data")
		return nil
	}
	b := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	return b
}

// DecodeTrace parses the output of EncodeTrace and checks trace invariants
func DecodeTrace(data []byte) (*Trace, error) {
	r := &traceReader{data: data}

	policy, err := ParsePolicy(string(r.readBytes(r.uvarint())))
	if r.err != nil {
		return nil, r.err
	}
	if err != nil {
		return nil, ErrCorruptTrace("DecodeTrace", "unknown policy", err)
	}

	capacity := r.uvarint()
	faults := r.uvarint()
	count := r.uvarint()
	if r.err != nil {
		return nil, r.err
	}
	// Each step takes at least three bytes plus one per frame
	if count > uint64(len(data)) || capacity > math.MaxInt32 ||
		(count > 0 && capacity > uint64(len(data))) {
		return nil, ErrCorruptTrace("DecodeTrace", "step or frame count exceeds data size", nil)
	}

	t := &Trace{
		Policy:   policy,
		Capacity: int(capacity),
		Faults:   int(faults),
		Steps:    make([]Step, 0, count),
	}

	for i := uint64(0); i < count && r.err == nil; i++ {
		s := Step{Reference: PageID(r.varint())}
		flags := r.readByte()
		s.Fault = flags&stepFlagFault != 0
		if flags&stepFlagEvicted != 0 {
			s.Evicted = Resident(PageID(r.varint()))
		}
		s.SlotIndex = int(r.varint())

		s.Frames = make([]Slot, capacity)
		for j := range s.Frames {
			switch r.readByte() {
			case 0:
			case 1:
				s.Frames[j] = Resident(PageID(r.varint()))
			default:
				r.fail("bad frame marker")
			}
		}
		t.Steps = append(t.Steps, s)
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(data) {
		return nil, ErrCorruptTrace("DecodeTrace", "trailing bytes", nil)
	}
	if err := CheckTrace(t); err != nil {
		return nil, err
	}

	return t, nil
}

// CheckTrace verifies the structural invariants every simulator guarantees
func CheckTrace(t *Trace) error {
	if t.FaultCount() != t.Faults {
		return ErrCorruptTrace("CheckTrace",
			fmt.Sprintf("fault count %d does not match %d faulted steps", t.Faults, t.FaultCount()), nil)
	}
	for i, s := range t.Steps {
		if len(s.Frames) != t.Capacity {
			return ErrCorruptTrace("CheckTrace", fmt.Sprintf("step %d has %d frames, want %d", i, len(s.Frames), t.Capacity), nil)
		}
		seen := make(map[PageID]bool, len(s.Frames))
		for _, f := range s.Frames {
			if !f.Valid {
				continue
			}
			if seen[f.Page] {
				return ErrCorruptTrace("CheckTrace", fmt.Sprintf("step %d holds page %d twice", i, f.Page), nil)
			}
			seen[f.Page] = true
		}
		if s.Evicted.Valid && !s.Fault {
			return ErrCorruptTrace("CheckTrace", fmt.Sprintf("step %d evicts without a fault", i), nil)
		}
	}
	return nil
}

// CompressTrace encodes and compresses a trace into an archive
func CompressTrace(t *Trace, compressionType CompressionType) ([]byte, error) {
	encoded := EncodeTrace(t)

	if compressionType == CompressionBest {
		return compressBest(encoded)
	}

	payload, actual, err := compressPayload(encoded, compressionType)
	if err != nil {
		return nil, err
	}
	return frameArchive(encoded, payload, actual), nil
}

func compressPayload(encoded []byte, compressionType CompressionType) ([]byte, CompressionType, error) {
	var compressed []byte

	switch compressionType {
	case CompressionNone:
		return encoded, CompressionNone, nil

	case CompressionLZ4:
		compressed = make([]byte, lz4.CompressBlockBound(len(encoded)))
		n, err := lz4.CompressBlock(encoded, compressed, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("LZ4 compression failed: %w", err)
		}
		compressed = compressed[:n]

	case CompressionSnappy:
		compressed = snappy.Encode(nil, encoded)

	default:
		return nil, 0, ErrCompression("CompressTrace", compressionType)
	}

	// lz4 reports incompressible input as n == 0
	if len(compressed) == 0 || len(compressed) >= len(encoded) {
		return encoded, CompressionNone, nil
	}
	return compressed, compressionType, nil
}

func compressBest(encoded []byte) ([]byte, error) {
	lz4Payload, lz4Type, err := compressPayload(encoded, CompressionLZ4)
	if err != nil {
		return nil, err
	}
	snappyPayload, snappyType, err := compressPayload(encoded, CompressionSnappy)
	if err != nil {
		return nil, err
	}

	if len(lz4Payload) <= len(snappyPayload) {
		return frameArchive(encoded, lz4Payload, lz4Type), nil
	}
	return frameArchive(encoded, snappyPayload, snappyType), nil
}

func frameArchive(encoded, payload []byte, compressionType CompressionType) []byte {
	buf := make([]byte, TraceArchiveHeaderSize+len(payload))
	binary.LittleEndian.PutUint16(buf[0:2], TraceArchiveMagic)
	buf[2] = uint8(compressionType)
	buf[3] = traceEncodingVersion
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(encoded)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[12:16], crc32.ChecksumIEEE(encoded))
	copy(buf[TraceArchiveHeaderSize:], payload)
	return buf
}

// ArchiveInfo describes an archive header
type ArchiveInfo struct {
	Compression CompressionType
	EncodedSize int
	PayloadSize int
	Checksum    uint32
}

// Ratio returns encoded size / payload size
func (a ArchiveInfo) Ratio() float64 {
	if a.PayloadSize == 0 {
		return 1.0
	}
	return float64(a.EncodedSize) / float64(a.PayloadSize)
}

// ReadArchiveInfo parses and checks an archive header
func ReadArchiveInfo(data []byte) (ArchiveInfo, error) {
	if len(data) < TraceArchiveHeaderSize {
		return ArchiveInfo{}, ErrCorruptTrace("ReadArchiveInfo",
			fmt.Sprintf("data too short for archive header: %d bytes", len(data)), nil)
	}
	if magic := binary.LittleEndian.Uint16(data[0:2]); magic != TraceArchiveMagic {
		return ArchiveInfo{}, ErrCorruptTrace("ReadArchiveInfo",
			fmt.Sprintf("invalid magic number: got %04x, expected %04x", magic, TraceArchiveMagic), nil)
	}
	if data[3] != traceEncodingVersion {
		return ArchiveInfo{}, ErrCorruptTrace("ReadArchiveInfo",
			fmt.Sprintf("unsupported encoding version %d", data[3]), nil)
	}

	info := ArchiveInfo{
		Compression: CompressionType(data[2]),
		EncodedSize: int(binary.LittleEndian.Uint32(data[4:8])),
		PayloadSize: int(binary.LittleEndian.Uint32(data[8:12])),
		Checksum:    binary.LittleEndian.Uint32(data[12:16]),
	}
	if TraceArchiveHeaderSize+info.PayloadSize != len(data) {
		return ArchiveInfo{}, ErrCorruptTrace("ReadArchiveInfo",
			fmt.Sprintf("payload size %d does not match %d data bytes", info.PayloadSize, len(data)-TraceArchiveHeaderSize), nil)
	}
	if err := checkEncodedSize(info); err != nil {
		return ArchiveInfo{}, err
	}
	return info, nil
}

// maxExpansion is the largest decoded/payload ratio an lz4 block can reach
const maxExpansion = 255

// checkEncodedSize bounds the declared decoded size before anything is allocated for it
func checkEncodedSize(info ArchiveInfo) error {
	if info.Compression == CompressionNone && info.EncodedSize != info.PayloadSize {
		return ErrCorruptTrace("ReadArchiveInfo",
			fmt.Sprintf("uncompressed archive declares %d encoded bytes for a %d byte payload", info.EncodedSize, info.PayloadSize), nil)
	}
	limit := maxExpansion*uint64(info.PayloadSize) + TraceArchiveHeaderSize
	if uint64(info.EncodedSize) > limit {
		return ErrCorruptTrace("ReadArchiveInfo",
			fmt.Sprintf("encoded size %d cannot come from a %d byte payload", info.EncodedSize, info.PayloadSize), nil)
	}
	return nil
}

// DecompressTrace reverses CompressTrace
func DecompressTrace(data []byte) (*Trace, error) {
	info, err := ReadArchiveInfo(data)
	if err != nil {
		return nil, err
	}
	payload := data[TraceArchiveHeaderSize:]

	var encoded []byte
	switch info.Compression {
	case CompressionNone:
		encoded = payload

	case CompressionLZ4:
		encoded = make([]byte, info.EncodedSize)
		n, err := lz4.UncompressBlock(payload, encoded)
		if err != nil {
			return nil, ErrCorruptTrace("DecompressTrace", "LZ4 decompression failed", err)
		}
		if n != info.EncodedSize {
			return nil, ErrCorruptTrace("DecompressTrace",
				fmt.Sprintf("LZ4 decompression size mismatch: got %d, expected %d", n, info.EncodedSize), nil)
		}

	case CompressionSnappy:
		n, err := snappy.DecodedLen(payload)
		if err != nil {
			return nil, ErrCorruptTrace("DecompressTrace", "snappy header unreadable", err)
		}
		if n != info.EncodedSize {
			return nil, ErrCorruptTrace("DecompressTrace",
				fmt.Sprintf("snappy decoded length %d, expected %d", n, info.EncodedSize), nil)
		}
		encoded, err = snappy.Decode(nil, payload)
		if err != nil {
			return nil, ErrCorruptTrace("DecompressTrace", "snappy decompression failed", err)
		}

	default:
		return nil, ErrCompression("DecompressTrace", info.Compression)
	}

	if len(encoded) != info.EncodedSize {
		return nil, ErrCorruptTrace("DecompressTrace",
			fmt.Sprintf("size mismatch: got %d, expected %d", len(encoded), info.EncodedSize), nil)
	}
	if sum := crc32.ChecksumIEEE(encoded); sum != info.Checksum {
		return nil, ErrCorruptTrace("DecompressTrace",
			fmt.Sprintf("checksum mismatch: got %08x, expected %08x", sum, info.Checksum), nil)
	}

	return DecodeTrace(encoded)
}
