package events

// Package events publishes pipeline outcomes to a message broker so that
// download counts and failure rates can be tracked outside the bot.
