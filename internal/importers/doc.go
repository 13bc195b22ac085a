// Package importers turns course CSV files into staged import sessions.
//
// # Flow
//
//	bytes → Decode → ReadCSV → header check → MapRow → ImportRecord → Session.Execute → RowProcessor
//
// A Session is created either from raw file content (NewSession) or from the
// token of a previously staged file (ResumeSession). Staging lets a caller
// show the detected headers and a preview before committing the import.
//
// # Session states
//
//	Uninitialized → HeaderValidated → RowsStaged → Executed
//
// Any fatal condition moves the session to Failed and records a message in
// Errors. Execute may run once; rows missing a required field are reported
// as failed without stopping the run.
//
// # Example Usage
//
//	session := importers.NewSession(importers.Input{
//		Content:   content,
//		Encoding:  "UTF-8",
//		Delimiter: importers.DelimiterComma,
//	}, importers.Options{Categories: resolver, Staging: staging})
//	if session.HasErrors() {
//		return session.Err()
//	}
//	summary, err := session.Execute(ctx, engine, tracker.New(tracker.ModePlain, os.Stdout))
package importers
