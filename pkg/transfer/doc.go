/*
Package transfer implements the core pipeline that moves media onto a
FAT device.

	+-----------+   +--------+   +---------+   +------+   +------+
	|  Compute  |-->| Filter |-->| Convert |-->| Dirs |-->| Copy |
	|   Plan    |   +--------+   +---------+   +------+   +------+
	+-----------+                                             |
	                              +---------+   +--------+    |
	                              | Cleanup |<--| Rename |<---+
	                              +---------+   +--------+

🎯 Purpose:
- Computes the source → destination plan for files and directory trees
- Drops filtered extensions, transcodes audio into temp files, creates
  destination directories, copies with an overwrite policy
- Tracks every temp file it makes and guarantees removal at run end
- Applies the source-deletion policy under interactive/non-interactive
  rules

🔄 Flow:
1. ComputePlan walks the sources into an ordered list of
   {Source, DestDir, DestFile} entries plus the directories they need
2. Each stage mutates the plan in place; entries are removed or rewritten
   as single records, never as parallel lists
3. Run sequences the stages, accumulates per-file failures into a Report,
   and only aborts on plan errors, prompt errors or cancellation

🤝 Interfaces:
- convert.Converter: opaque external transcoder
- prompt.Prompter: every yes/no question goes through this one seam
- userlog.Logger: user-facing progress and warnings

The engine never terminates the process and never writes to stdout or
stderr directly; everything user-facing flows through the injected
logger, and exit semantics belong to the caller.
*/
package transfer
