// Package journal records committed writes of an observed object into a ports.Journal and
// replays them onto another object.
package journal
