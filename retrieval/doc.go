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


// Package retrieval ranks corpus fragments against natural-language queries.
//
// The Retriever composes a two-stage pipeline: a semantic stage narrows the
// corpus to a candidate pool by cosine similarity between embedding vectors,
// then a cross-encoder rerank stage re-orders the pool and keeps the top
// results. Each stage is a pure function over its input, so stages are
// substitutable without touching orchestration.
//
// LegacySearch offers a keyword-overlap fallback for environments without an
// embedding model. Both paths short-circuit an empty corpus to an empty
// result without invoking any model.
package retrieval
