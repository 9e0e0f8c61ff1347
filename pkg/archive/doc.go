/*
Package archive implements the template-expansion and file-placement engine.

	 +-------------+
	 |  Template   |
	 | (Compile)   |
	 +------+------+
	        |
	 +------+------+
	 |   Render    |
	 | (Metadata)  |
	 +------+------+
	        |
	 +------+------+
	 |   Placer    |
	 | (Copy/Move) |
	 +-------------+

🎯 Purpose:
- Compiles the user's path template once per run
- Renders a destination path per file from its activity metadata
- Places files without overwriting unrelated data or losing sources

🔄 Flow:
1. Compile parses the template into literal/time/tag tokens
2. Render expands tokens against one file's metadata
3. Placer copies or moves the file, resolving collisions by suffix
4. Archiver runs the pipeline per file and collects outcomes

⚡ Key Responsibilities:
- Sanitizing substituted values so they cannot escape the archive
- Duplicate detection by content hash, never silent overwrites
- Durable-write-before-source-removal ordering for moves
- Per-file failure isolation within a batch

📝 Design Philosophy:
The engine treats the filesystem as the only authority: existence checks
are advisory, and the O_EXCL create decides who owns a destination. Every
per-file error becomes an outcome instead of aborting the batch; the only
fatal error is a template that fails to compile, because it would fail for
every file identically.
*/
package archive
