// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// formatVersion guards against reading files written by a different layout.
const formatVersion = 1

var (
	vectorSer     = ord.NewSliceSer[float32](raw.Float32)
	vectorListSer = ord.NewSliceSer[[]float32](vectorSer)
)

// MarshalVectors serializes an ordered vector list to bytes.
func MarshalVectors(vectors [][]float32) []byte {
	buf := make([]byte, varint.Int.Size(formatVersion)+vectorListSer.Size(vectors))
	n := varint.Int.Marshal(formatVersion, buf)
	vectorListSer.Marshal(vectors, buf[n:])
	return buf
}

// UnmarshalVectors deserializes an ordered vector list from bytes.
// Truncated or malformed data, including an unknown format version,
// surfaces ErrCacheRead.
func UnmarshalVectors(data []byte) ([][]float32, error) {
	version, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCacheRead, version)
	}

	vectors, _, err := vectorListSer.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}
	return vectors, nil
}
