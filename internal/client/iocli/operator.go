package iocli

import (
	"context"
	"fmt"
)

// Operator подтверждение оператора одной клавишей: y/Y - да, остальное - нет
type Operator struct {
	io IO
}

func NewOperator(io IO) *Operator {
	return &Operator{io: io}
}

// Continue спрашивает, продолжать ли кампанию
func (o *Operator) Continue(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key, err := o.io.ReadKey(prompt + " [y/N] ")
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return key == 'y' || key == 'Y', nil
}

// Pause ждет любую клавишу
func (o *Operator) Pause(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.io.Println(message)
	if _, err := o.io.ReadKey("Press any key to continue..."); err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	return nil
}
