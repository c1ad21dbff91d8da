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


package prompt

import (
	"fmt"
	"strings"

	"github.com/poiesic/docchat/core"
)

// previewRunes caps each excerpt in the context block. Full fragment text
// stays with the result for citation display; the model sees the preview.
const previewRunes = 200

const groundedTemplate = `You are an AI assistant that answers questions based on provided document content.
Use the retrieved document context below to answer the user's question.
Always cite the source (document name, page number) when referencing the documents.
If the answer is not in the provided context, say so clearly.

%s

---

User Question: %s

Please provide a detailed answer with specific citations.`

// Prompt is a composed model prompt. Grounded reports whether Text embeds
// retrieved context or is the bare query.
type Prompt struct {
	Text     string
	Grounded bool
}

// Build composes a prompt for the query from retrieval results. With no
// results the query passes through unchanged and the prompt is ungrounded.
func Build(query string, results []core.ScoredFragment) Prompt {
	if len(results) == 0 {
		return Prompt{Text: query}
	}
	return Prompt{
		Text:     fmt.Sprintf(groundedTemplate, FormatContext(results), query),
		Grounded: true,
	}
}

// FormatContext renders retrieval results as a labeled context block. Each
// excerpt carries a 1-based citation label with document name and page;
// unknown pages render as "?". Empty input renders as an empty string.
func FormatContext(results []core.ScoredFragment) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Document Context Retrieved:")
	for i, result := range results {
		fmt.Fprintf(&b, "\n\n[%d] %s, Page %s\n%s",
			i+1, result.DocumentName, pageLabel(result.Page), preview(result.Text))
	}
	return b.String()
}

func pageLabel(page int) string {
	if page == core.PageUnknown {
		return "?"
	}
	return fmt.Sprintf("%d", page)
}

// preview truncates text to previewRunes runes, appending an ellipsis when
// anything was cut.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
