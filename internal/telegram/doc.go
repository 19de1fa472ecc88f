package telegram

// Package telegram connects the pipeline to the Telegram Bot API. It
// receives updates by long polling or webhook, turns them into
// submissions and callbacks, and implements the notifier and uploader
// used by the pipeline.
