// Package fetch resolves profiles and runs the posts, stories and follow
// list downloads against a Platform, writing under the storage tree:
//
//	<data>/<username>/posts/<shortcode>/<stamp>_UTC.{jpg,mp4,txt,json}
//	<data>/<username>/stories/<stamp>_UTC.{jpg,mp4}
//	<data>/<username>/followers/followers.txt
//	<data>/<username>/followees/followees.txt
//
// A profile is resolved before any directory is created. Not-found and
// login-required outcomes are reported here and end the action with a nil
// error; every other failure is returned to the caller.
package fetch
