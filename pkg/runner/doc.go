/*
Package runner drives one wizard session from a line-oriented terminal or a
JSON-lines pipe.

The Runner asks for each field of the active step, advances with Next, and
shows the draft summary and the "[y/N]" confirmation once step 5 is done.
It talks to the user through an IOHandler:

  - TextHandler: interactive prompts, with an optional markdown renderer.
  - JSONHandler: one JSON event per line out, one answer per line in.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	res, err := r.Run(ctx, manager)

Typing ":back" at any field prompt returns to the previous step, and a blank
line keeps the current value. Interrupting leaves the session in the store so
it can be resumed with WithSessionID.
*/
package runner
