// Package cli provides the interactive gophdrop command-line client.
//
// It wires configuration, the local database, the upload transport, the
// bucket listing and an interactive REPL. A background watcher pings the
// gateway's health service and switches the prompt between online and
// offline; local operations keep working offline.
//
// Commands:
//   - upload <path>     start sending a file (progress is printed as it goes)
//   - cancel            abort the upload in flight
//   - status            show the current or last upload
//   - list | l          show the merged files view
//   - refresh           re-read the bucket, then show the files view
//   - delete <n|key>    delete a file from the bucket and the local list
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
