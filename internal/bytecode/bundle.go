package bytecode

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// bundleVersion constants
const bundleVersionV1 byte = 0x01

// bundleMagic identifies a serialized bundle: "WSPB"
var bundleMagic = [4]byte{0x57, 0x53, 0x50, 0x42}

var bundleEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	bundleEncMode = em
}

// Bundle persists a compiled program so it can be executed later without
// reparsing the source.
type Bundle struct {
	// Program is the compiled bytecode
	Program *Program `cbor:"program"`

	// SourceFile is the original source file path (for diagnostics)
	SourceFile string `cbor:"source_file,omitempty"`

	// BuildID uniquely identifies one build of a bundle
	BuildID string `cbor:"build_id"`
}

// NewBundle wraps a compiled program in a bundle with a fresh build ID.
func NewBundle(p *Program, sourceFile string) *Bundle {
	return &Bundle{
		Program:    p,
		SourceFile: sourceFile,
		BuildID:    uuid.NewString(),
	}
}

// Serialize converts a bundle to its binary format.
// Format:
// - Magic number (4 bytes): "WSPB"
// - Version (1 byte): 0x01
// - CBOR-encoded bundle data
func (b *Bundle) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)

	buf.Write(bundleMagic[:])
	buf.WriteByte(bundleVersionV1)

	data, err := bundleEncMode.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("bundle cbor encoding failed: %w", err)
	}
	buf.Write(data)

	return buf.Bytes(), nil
}

// DeserializeBundle reads bundle data produced by Serialize.
func DeserializeBundle(data []byte) (*Bundle, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("bundle data too short")
	}

	if !bytes.Equal(data[:4], bundleMagic[:]) {
		return nil, fmt.Errorf("invalid magic number, expected WSPB")
	}

	version := data[4]
	payload := data[5:]

	switch version {
	case bundleVersionV1:
		var bundle Bundle
		if err := cbor.Unmarshal(payload, &bundle); err != nil {
			return nil, fmt.Errorf("bundle cbor decoding failed: %w", err)
		}
		if err := bundle.Validate(); err != nil {
			return nil, fmt.Errorf("bundle validation failed: %w", err)
		}
		return &bundle, nil

	default:
		return nil, fmt.Errorf("unsupported bundle version: %d (this binary supports version %d)",
			version, bundleVersionV1)
	}
}

// Validate checks the structural integrity of a deserialized bundle.
// Bundles come from disk, so pool indices, branch targets and operand
// counts are checked before a VM ever trusts them.
func (b *Bundle) Validate() error {
	if b.Program == nil {
		return fmt.Errorf("bundle has nil program")
	}
	p := b.Program
	if len(p.Insts) != len(p.Lines) {
		return fmt.Errorf("instruction/line count mismatch: %d vs %d", len(p.Insts), len(p.Lines))
	}
	for i, inst := range p.Insts {
		if _, ok := OpcodeNames[inst.Op]; !ok {
			return fmt.Errorf("instruction %d has unknown opcode %d", i, inst.Op)
		}
		switch {
		case inst.Op == OP_PUSH:
			if inst.Arg < 0 || inst.Arg >= int64(len(p.Consts)) {
				return fmt.Errorf("instruction %d references constant %d outside pool of %d",
					i, inst.Arg, len(p.Consts))
			}
		case inst.Op.IsBranch():
			if inst.Arg < 0 || inst.Arg > int64(len(p.Insts)) {
				return fmt.Errorf("instruction %d branches to %d outside program of %d",
					i, inst.Arg, len(p.Insts))
			}
		case inst.Op == OP_COPY || inst.Op == OP_SLIDE:
			// Oversized counts fail as a stack underflow at run time and
			// need no check here.
			if inst.Arg < 0 {
				return fmt.Errorf("instruction %d has negative count %d", i, inst.Arg)
			}
		}
	}
	return nil
}
