// Command askdb is a natural-language SQL assistant: it translates questions
// into SQL, screens every statement, and executes only what the user approves.
package main

import (
	"os"

	"github.com/askdb-labs/askdb/internal/cli"

	// Database adapters register themselves on import.
	_ "github.com/askdb-labs/askdb/pkg/adapters/duckdb"
	_ "github.com/askdb-labs/askdb/pkg/adapters/mysql"
	_ "github.com/askdb-labs/askdb/pkg/adapters/postgres"
	_ "github.com/askdb-labs/askdb/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
