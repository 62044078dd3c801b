/*
Package views implements the read-only snapshot queries served to API
consumers: followees, followers, the following and network timelines, and
notifications. Heads are served by pkg/engine's Heads, not by this package.
It holds no state of its own beyond a storage.Store handle and composes
entirely from Tx's typed table methods, the same snapshot-isolated View
transactions the engine uses for its own stats.
*/
package views
