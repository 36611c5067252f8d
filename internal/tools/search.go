package tools

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\w+`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Document is one searchable corpus entry.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// BM25Index scores documents against queries with Okapi BM25.
type BM25Index struct {
	k1        float64
	b         float64
	docs      []Document
	docTokens [][]string
	docFreqs  []map[string]int
	avgDocLen float64
	idf       map[string]float64
}

// NewBM25Index creates an index with the standard k1=1.5, b=0.75 parameters.
func NewBM25Index() *BM25Index {
	return &BM25Index{k1: 1.5, b: 0.75, idf: map[string]float64{}}
}

// AddDocuments replaces the index contents and recomputes term statistics.
func (ix *BM25Index) AddDocuments(docs []Document) {
	ix.docs = docs
	ix.docTokens = make([][]string, len(docs))
	ix.docFreqs = make([]map[string]int, len(docs))

	totalTokens := 0
	for i, doc := range docs {
		tokens := tokenize(doc.Text)
		freq := make(map[string]int, len(tokens))
		for _, t := range tokens {
			freq[t]++
		}
		ix.docTokens[i] = tokens
		ix.docFreqs[i] = freq
		totalTokens += len(tokens)
	}

	ix.avgDocLen = 1.0
	if len(docs) > 0 {
		ix.avgDocLen = float64(totalTokens) / float64(len(docs))
	}

	df := map[string]int{}
	for _, freq := range ix.docFreqs {
		for term := range freq {
			df[term]++
		}
	}
	n := float64(len(docs))
	ix.idf = make(map[string]float64, len(df))
	for term, count := range df {
		ix.idf[term] = math.Log((n-float64(count)+0.5)/(float64(count)+0.5) + 1.0)
	}
}

// ScoredDocument pairs a document with its BM25 score.
type ScoredDocument struct {
	Document Document
	Score    float64
}

// Search returns the top-k documents with a positive BM25 score for the
// query, highest score first.
func (ix *BM25Index) Search(query string, topK int) []ScoredDocument {
	queryTokens := tokenize(query)

	scored := make([]ScoredDocument, 0, len(ix.docs))
	for i, doc := range ix.docs {
		score := 0.0
		dl := float64(len(ix.docTokens[i]))
		for _, token := range queryTokens {
			idf, ok := ix.idf[token]
			if !ok {
				continue
			}
			tf := float64(ix.docFreqs[i][token])
			num := tf * (ix.k1 + 1)
			den := tf + ix.k1*(1-ix.b+ix.b*dl/ix.avgDocLen)
			score += idf * num / den
		}
		if score > 0 {
			scored = append(scored, ScoredDocument{Document: doc, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// Search exposes BM25 retrieval over a knowledge corpus as a tool.
type Search struct {
	index  *BM25Index
	loaded bool
	path   string
}

// NewSearch creates a search tool. When path is empty the built-in corpus
// is used.
func NewSearch(path string) *Search {
	return &Search{index: NewBM25Index(), path: path}
}

// LoadCorpus loads a JSONL corpus into the index, falling back to the
// built-in corpus when no file is configured or readable.
func (s *Search) LoadCorpus() error {
	if s.path == "" {
		s.index.AddDocuments(defaultCorpus())
		s.loaded = true
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		s.index.AddDocuments(defaultCorpus())
		s.loaded = true
		return nil
	}
	defer f.Close()

	var docs []Document
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return fmt.Errorf("parsing corpus line: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}

	s.index.AddDocuments(docs)
	s.loaded = true
	return nil
}

func defaultCorpus() []Document {
	return []Document{
		{ID: "1", Title: "Springfield, IL", Text: "Springfield is a city in Illinois with a population of 116,250 as of 2020."},
		{ID: "2", Title: "Springfield Economy", Text: "The GDP of Springfield IL is approximately 7.6 billion dollars."},
		{ID: "3", Title: "Python", Text: "Python is a programming language created by Guido van Rossum in 1991."},
		{ID: "4", Title: "Speed of Light", Text: "The speed of light is approximately 299,792,458 meters per second."},
		{ID: "5", Title: "Earth", Text: "The Earth's circumference is approximately 40,075 kilometers."},
		{ID: "6", Title: "Water", Text: "Water boils at 100 degrees Celsius at standard atmospheric pressure."},
		{ID: "7", Title: "Body Temperature", Text: "The average human body temperature is 37 degrees Celsius or 98.6 degrees Fahrenheit."},
		{ID: "8", Title: "Mount Everest", Text: "Mount Everest is 8,849 meters tall, making it the tallest mountain on Earth."},
		{ID: "9", Title: "Amazon River", Text: "The Amazon River is approximately 6,400 kilometers long."},
		{ID: "10", Title: "Tokyo", Text: "Tokyo has a population of approximately 13.96 million people."},
	}
}

func (s *Search) Name() string { return "search" }

func (s *Search) Description() string {
	return "Search a knowledge corpus for relevant information. Returns top matching documents."
}

func (s *Search) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query string",
			},
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Number of results to return (default: 3)",
				"default":     3,
			},
		},
		"required": []string{"query"},
	}
}

func (s *Search) Execute(arguments map[string]any) (string, error) {
	if !s.loaded {
		if err := s.LoadCorpus(); err != nil {
			return "", err
		}
	}

	query, _ := arguments["query"].(string)
	if query == "" {
		return "", fmt.Errorf("missing 'query' argument")
	}
	topK := 3
	switch v := arguments["top_k"].(type) {
	case float64:
		topK = int(v)
	case int:
		topK = v
	}

	results := s.index.Search(query, topK)
	if len(results) == 0 {
		return "No results found.", nil
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		title := r.Document.Title
		if title == "" {
			title = "Untitled"
		}
		parts = append(parts, fmt.Sprintf("[%d] %s (score: %.2f)\n%s", i+1, title, r.Score, r.Document.Text))
	}
	return strings.Join(parts, "\n\n"), nil
}
