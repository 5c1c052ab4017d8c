// Package launch resolves how the host application is foregrounded when a
// notification is opened.
//
// A payload carrying a deep link resolves to a DeepLinkView intent whose
// target URI is the link itself; this is the shape the application's own
// URL-routing layer expects to observe on a cold start. Otherwise the host's
// own declared launch component is looked up through an Identity and the
// intent is a DefaultEntry.
//
// Both kinds request a new task and a reset of any existing task to its
// root, and carry no target-package restriction. Starting the foreground
// action is the job of an Activator, which this package only defines.
package launch
