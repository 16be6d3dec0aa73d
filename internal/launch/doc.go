// Package launch assembles the game launch command from an installed
// instance: the launcher profile, the classpath built from the library
// tree, and the fixed JVM flags.
package launch
