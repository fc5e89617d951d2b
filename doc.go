// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package wavelog provides a fast value-change logging layer between a
discrete-event simulation kernel and a waveform-logging client.

For every simulated object discovered by the client, a Session tells whether
its value can be logged directly through a low overhead callback (Primary),
must be reconstructed off-line from other logged values (Secondary), never
changes (Literal), or cannot be logged at all (Unavailable).

Secondary objects come with a map expression: an immutable tree of Node values
describing how to compute the object's value from the values of other objects.
Objects sharing the same expression are aliases of a single canonical tree.

A typical client does:

	s, err := wavelog.Init(kernel, nil)
	if err != nil {
		// fall back to slow callbacks
	}
	s.Start()
	for _, h := range handles {
		switch s.Classify(h) {
		case wavelog.Primary, wavelog.Literal:
			loc := s.SetCallback(h, onChange, h)
			if loc == nil {
				// fall back to slow callbacks for h
			}
		case wavelog.Secondary:
			expr, isAlias := s.MapExpr(h)
			// evaluate expr at visualization time
		}
	}
	s.Finalize()
	s.Cleanup()

Sessions are not safe for concurrent use. All calls must be made from the
kernel's control thread, between simulation steps. Any call made after
Cleanup is invalid: it returns a zero value and logs a warning.
*/
package wavelog
