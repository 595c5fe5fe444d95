package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// MagicNumber identifies a packed weight file; Version gates format
// changes. Loading validates both, per §6's "validate the architecture
// hash; mismatch → load failure".
const (
	MagicNumber uint32 = 0x43484553 // "CHES"
	Version     uint32 = 1
)

// FileHeader is the fixed-size prefix of a packed weight file.
type FileHeader struct {
	Magic   uint32
	Version uint32
	L1Size  uint32
	L2Size  uint32
}

// LoadWeights opens path and parses a Network from it.
func LoadWeights(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadWeightsFromReader(f)
}

// LoadWeightsFromReader parses a Network from any reader, validating the
// header before touching the weight blobs.
func LoadWeightsFromReader(r io.Reader) (*Network, error) {
	var hdr FileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("nnue: read header: %w", err)
	}
	if hdr.Magic != MagicNumber {
		return nil, fmt.Errorf("nnue: bad magic %#x", hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("nnue: unsupported version %d", hdr.Version)
	}
	if hdr.L1Size != L1Size || hdr.L2Size != L2Size {
		return nil, fmt.Errorf("nnue: architecture mismatch: got L1=%d L2=%d, want L1=%d L2=%d", hdr.L1Size, hdr.L2Size, L1Size, L2Size)
	}

	net := &Network{}
	readers := []struct {
		name string
		dst  interface{}
	}{
		{"L1Weights", &net.L1Weights},
		{"L1Bias", &net.L1Bias},
		{"L2Weights", &net.L2Weights},
		{"L2Bias", &net.L2Bias},
		{"OutputWeights", &net.OutputWeights},
		{"OutputBias", &net.OutputBias},
	}
	for _, f := range readers {
		if err := binary.Read(r, binary.LittleEndian, f.dst); err != nil {
			return nil, fmt.Errorf("nnue: read %s: %w", f.name, err)
		}
	}
	return net, nil
}

// SaveWeights writes net to path in the format LoadWeights expects.
func SaveWeights(path string, net *Network) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := FileHeader{Magic: MagicNumber, Version: Version, L1Size: L1Size, L2Size: L2Size}
	if err := binary.Write(f, binary.LittleEndian, hdr); err != nil {
		return err
	}
	fields := []interface{}{
		net.L1Weights, net.L1Bias, net.L2Weights, net.L2Bias, net.OutputWeights, net.OutputBias,
	}
	for _, v := range fields {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}
