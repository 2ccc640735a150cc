// Command frete-proxy sobe o relay de cotação de frete da Melhor Envio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		// o logger pode nem ter sido criado ainda
		_, _ = os.Stderr.WriteString("erro: " + err.Error() + "\n")
		return 1
	}
	return 0
}
