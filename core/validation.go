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


package core

import "fmt"

// ValidateFragment validates a Fragment according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - DocumentID must not be empty
//   - ChunkIndex must not be negative
//   - StartWord must be strictly before EndWord
//   - Page must be PageUnknown or positive
//
// NOT validated:
//   - DocumentName (display-only, may be empty)
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidFragment)
	}

	if fragment.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyText)
	}

	if fragment.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyDocumentID)
	}

	if fragment.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrNegativeChunkIndex)
	}

	if fragment.StartWord < 0 || fragment.StartWord >= fragment.EndWord {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrInvalidWordRange)
	}

	if fragment.Page < PageUnknown {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrInvalidPage)
	}

	return nil
}
