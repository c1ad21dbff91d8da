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


// Package corpus splits extracted document text into overlapping word-window
// fragments and manages merged multi-document fragment corpora.
//
// Chunking is a pure transformation: a document's words are sliced into
// windows of a configured size, each window advancing by size minus overlap
// words, so neighboring fragments share a fixed number of words. Fragments
// carry their document identity, letting a merged corpus be filtered back
// down to a single document without re-chunking.
//
// Text extraction from source formats (PDF and friends) is a collaborator
// concern; this package consumes already-extracted text.
package corpus
