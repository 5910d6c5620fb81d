// Command dupcheck checks CRM records against an existing pool for likely duplicates.
//
// Usage:
//
//	dupcheck detect --entity lead --candidate new.yaml --pool crm.yaml
//	dupcheck explain --entity account --candidate new.yaml --existing acct.yaml
//	dupcheck similarity "Acme Corp" "Acme Corporation"
//	dupcheck normalize "  ACME, Inc. "
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
