/*
Package livingtrust builds Living Trust drafts through a five-step wizard and
submits them to a trust service.

The wizard is a reducer over an explicit step table: each step names its
fields and, for steps 1 to 3, the field that must be filled before Next
succeeds. Step 5 never submits; it opens a confirmation prompt, and only an
explicit yes calls the submission gateway, exactly once per session.

# Architecture

The package follows a hexagonal layout:

  - pkg/domain: drafts, wizard state, records and errors.
  - internal/wizard: the pure reducer (Start, Update, Next, Back, Cancel, Confirm).
  - pkg/session: load, reduce and save under a per-session lock.
  - pkg/ports: stores, repositories, gateway and advisor contracts.
  - pkg/adapters: memory, redis, sqlite, loam, HTTP and MCP.

# Usage

	eng := livingtrust.New(
		livingtrust.WithGateway(client.New("http://localhost:3001")),
	)
	res, err := eng.Run(ctx, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Trust.ID)

Sessions can also be driven one operation at a time:

	st, _ := eng.Start(ctx, "")
	st, _ = eng.Update(ctx, st.SessionID, domain.FieldTrustName, "Smith Family Trust")
	st, err = eng.Next(ctx, st.SessionID)
*/
package livingtrust
