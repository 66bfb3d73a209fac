// Package tokenizer provides the word/sub-word vocabulary and the
// marker-annotating pre-tokenizer of the translation engine.
//
// The package implements:
//   - Vocab: word <-> id table with reserved special ids and marker symbols
//   - WordTokenizer: surface text -> marker-annotated tokens -> ids
//
// Reserved ids:
//   - <pad>=0, <s>=1, </s>=2, <unk>=3
//   - followed by the Space, Attach and Quote marker symbols (_ ^ `)
//
// Vocabulary files are JSON objects of the form {"word2id": {"<pad>": 0, ...}}.
//
// Example usage:
//
//	vocab, err := tokenizer.LoadVocab("vocab.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tok := tokenizer.NewWordTokenizer(vocab)
//	tokens := tok.Tokenize("Hello, world!")
//	// [_ Hello , _ world !]
//	ids := tok.Encode(tokens)
package tokenizer
