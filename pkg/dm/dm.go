// Package dm decodes the diagnostic message kinds the test steps work with.
package dm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roffe/j1939"
)

// DecodeFunc turns a reassembled payload into a message
type DecodeFunc func(source j1939.Address, data []byte) (j1939.Message, error)

type DecoderInfo struct {
	PGN         j1939.PGN
	Description string
	Decode      DecodeFunc
}

var (
	decoderMu  sync.RWMutex
	decoderMap = make(map[j1939.PGN]*DecoderInfo)
)

func RegisterDecoder(info *DecoderInfo) error {
	decoderMu.Lock()
	defer decoderMu.Unlock()
	if _, found := decoderMap[info.PGN]; found {
		return fmt.Errorf("decoder for %s already registered", info.PGN)
	}
	decoderMap[info.PGN] = info
	return nil
}

// Decode decodes data received from source as pgn
func Decode(pgn j1939.PGN, source j1939.Address, data []byte) (j1939.Message, error) {
	decoderMu.RLock()
	info, found := decoderMap[pgn]
	decoderMu.RUnlock()
	if !found {
		return nil, &j1939.DecodeError{PGN: pgn, Source: source, Reason: "no decoder registered"}
	}
	return info.Decode(source, data)
}

// ListDecoders returns the registered decoders ordered by PGN
func ListDecoders() []DecoderInfo {
	decoderMu.RLock()
	defer decoderMu.RUnlock()
	out := make([]DecoderInfo, 0, len(decoderMap))
	for _, d := range decoderMap {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PGN < out[j].PGN })
	return out
}

func init() {
	for _, d := range []*DecoderInfo{
		{
			PGN:         j1939.PGNAcknowledgment,
			Description: "Acknowledgment",
			Decode: func(source j1939.Address, data []byte) (j1939.Message, error) {
				return j1939.DecodeAcknowledgment(source, data)
			},
		},
		{PGN: j1939.PGNDM5, Description: "Diagnostic Readiness 1", Decode: decodeDM5},
		{PGN: j1939.PGNDM19, Description: "Calibration Information", Decode: decodeDM19},
		{PGN: j1939.PGNDM26, Description: "Diagnostic Readiness 3", Decode: decodeDM26},
		{PGN: j1939.PGNComponentIdentification, Description: "Component Identification", Decode: decodeComponentID},
	} {
		if err := RegisterDecoder(d); err != nil {
			panic(err)
		}
	}
}
