// Package alarm defines the closed vocabularies shared by the routing layer:
// sensor kinds, panel commands, panel states, panel events and panel actions.
//
// Every vocabulary has a Parse function that rejects unknown values with a
// sentinel error instead of silently defaulting.
package alarm
