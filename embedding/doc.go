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


// Package embedding memoizes fragment embeddings in memory and on disk.
//
// The Cache is the sole writer of persisted cache entries. A document's
// fragments are always embedded together and persisted as one entry, so a
// warm cache answers without invoking the embedding model: at most one model
// invocation per document identity per process lifetime. Unreadable cache
// entries are absorbed as misses and recomputed, never surfaced as failures.
//
// Query embeddings are never cached; every query invokes the model.
package embedding
