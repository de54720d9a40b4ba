// Package dispatch validates panel commands before they reach the alarm core.
//
// Dispatch is a pure function of its Request: it reads a snapshot of the
// panel state and never changes it. Checks run in a fixed order and stop at
// the first failure:
//
//  1. the topic must be the configured command topic (else unrecognized, no event)
//  2. a configured code must be supplied (else no_code_provided)
//  3. the supplied code must match (else invalid_code_provided)
//  4. the lockout policy must allow the command in the current state
//     (else command_not_allowed)
//
// The code checks come before the state check so a caller without the code
// learns nothing about the panel state.
package dispatch
