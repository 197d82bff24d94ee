// Package pipeline constructs the APK assembly graph.
//
// Build performs the synchronous resource phase and then describes every
// remaining step as a deferred node in a topology store:
//
//	apk.resources -> apk.base ------------> inject.<arch>.placeholder -> inject.<arch>.library -> apk.sign
//	apk.resources -> lib.<arch>.compile --> (both injections)
//	apk.resources -> lib.<arch>.placeholder -> inject.<arch>.placeholder
//
// Nothing but the resource files is produced until an executor runs the
// graph.
package pipeline
