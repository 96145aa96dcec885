package contracts

type Tokenizer interface {
	Tokenize(expression string) Formula
}
