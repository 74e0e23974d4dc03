// Package database wraps the SurrealDB client used by the surrealdb
// registry backend.
//
// The Database interface is deliberately small:
//
//	type Database interface {
//	    Connect(ctx context.Context) error
//	    Close() error
//	    Ping(ctx context.Context) error
//	    Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
//	    QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
//	    Execute(ctx context.Context, query string, vars map[string]interface{}) error
//	}
//
// Query returns one {status, result} wrapper per statement. QueryOne unwraps
// the first wrapper and returns its first row, or ErrNotFound.
//
// Connect to SurrealDB:
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    Namespace: "guildhall",
//	    Database:  "main",
//	    User:      "root",
//	    Password:  "secret",
//	})
//	if err := db.Connect(ctx); err != nil {
//	    return err
//	}
//	defer db.Close()
//
// Errors are matched with errors.Is against ErrNotFound, ErrConnection and
// ErrQuery.
package database
