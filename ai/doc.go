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


// Package ai defines the model service interfaces used by the retrieval
// pipeline: text embedding, cross-encoder reranking, and answer generation.
//
// Implementations live in subpackages: ai/openai for OpenAI-compatible
// embedding and generation services, ai/rerank for cross-encoder rerank
// endpoints, and ai/mock for deterministic test doubles.
//
// Models are loaded once at session start and treated as read-only
// afterwards. A model that fails to initialize or run surfaces
// ErrModelUnavailable; there is no fallback inference path.
package ai
