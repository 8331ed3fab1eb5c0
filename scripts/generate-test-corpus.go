//go:build ignore

// Package main generates a synthetic corpus for benchmarking the
// retrieval cascade.
// Usage: go run scripts/generate-test-corpus.go -docs 500 -output testdata/corpus.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numDocs = flag.Int("docs", 500, "Number of documents to generate")
	output  = flag.String("output", "testdata/corpus.json", "Output corpus file")
	seed    = flag.Int64("seed", 42, "Random seed for reproducibility")
)

type corpusDoc struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

var topics = []string{
	"Bà Triệu", "Hai Bà Trưng", "Ngô Quyền", "Lý Thường Kiệt",
	"Trần Hưng Đạo", "Lê Lợi", "Quang Trung", "Thăng Long",
}

var sentences = []string{
	"%s là một nhân vật quan trọng trong lịch sử Việt Nam.",
	"Cuộc khởi nghĩa của %s chống lại quân xâm lược phương Bắc.",
	"Nhiều tài liệu ghi chép về %s còn được lưu giữ đến ngày nay.",
	"Các nhà sử học đánh giá cao vai trò của %s trong thời kỳ này.",
	"Đền thờ %s được xây dựng tại nhiều địa phương.",
}

var fillerWords = []string{
	"lịch", "sử", "nước", "nam", "triều", "đại", "kinh", "thành",
	"quân", "đội", "nhân", "dân", "văn", "hóa", "truyền", "thống",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	docs := make([]corpusDoc, *numDocs)
	for i := range docs {
		docs[i] = corpusDoc{
			FileName: fmt.Sprintf("doc_%04d.md", i),
			Content:  generateDoc(rng),
		}
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d documents to %s\n", len(docs), *output)
}

// generateDoc produces a markdown document with headed sections so all
// chunking strategies have structure to work with.
func generateDoc(rng *rand.Rand) string {
	topic := topics[rng.Intn(len(topics))]
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", topic)
	b.WriteString(paragraph(rng, topic, 3))

	numSections := 2 + rng.Intn(3)
	for s := 0; s < numSections; s++ {
		fmt.Fprintf(&b, "\n\n## Phần %d\n\n", s+1)
		b.WriteString(paragraph(rng, topic, 2+rng.Intn(4)))
	}
	return b.String()
}

func paragraph(rng *rand.Rand, topic string, n int) string {
	var parts []string
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf(sentences[rng.Intn(len(sentences))], topic))
		// Pad with filler so chunk sizes vary.
		words := make([]string, 5+rng.Intn(20))
		for j := range words {
			words[j] = fillerWords[rng.Intn(len(fillerWords))]
		}
		parts = append(parts, strings.Join(words, " ")+".")
	}
	return strings.Join(parts, " ")
}
