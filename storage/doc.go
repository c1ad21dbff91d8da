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


// Package storage persists embedding vectors on disk, one cache file per
// document identity. A file holds the ordered list of vectors for every
// fragment of that document, serialized in the MUS binary format, and is
// written atomically so a reader never observes a partial entry.
//
// Validity is judged by file existence plus a vector-count check against the
// fragment list; there is no checksum of the source text. Unreadable or
// truncated files surface ErrCacheRead, which callers treat as a cache miss.
package storage
