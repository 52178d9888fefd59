package iocli

//go:generate moq -out io_mock.go . IO

// IO ввод/вывод оператора
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	// ReadKey читает одну клавишу без Enter, если stdin терминал
	ReadKey(prompt string) (rune, error)
	Write(p []byte) (n int, err error)
}
