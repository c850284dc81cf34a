// Package notify sends session event notifications to chat platforms.
//
// One sender exists per platform (Telegram, Discord, Slack, generic
// webhook). Dispatch fans a payload out to every platform enabled for the
// event and races the sends against an overall timeout. A sender never
// returns an error past its boundary; every failure mode collapses into a
// failed SendResult so one broken platform cannot take down a dispatch.
//
// Senders that return a platform message id (Telegram, Discord bot) make
// the message trackable: callers register the id with the session registry
// so the reply listener can route replies back to the originating pane.
package notify
