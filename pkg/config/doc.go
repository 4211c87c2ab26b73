/*
Package config manages configuration parsing and validation for transfat.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |           |           |
	+-----+----+ +----+----+ +----+----+
	|   YAML   | |  JSON   | |   HCL   |
	+----------+ +---------+ +---------+

🎯 Purpose:
- Loads the transfer policies (filtering, conversion, overwrite, deletion)
  from YAML, JSON or HCL files
- Normalizes everything once (glob shorthands, extension case, rename
  regexps) so later stages never re-interpret user input
- Resolves prompting policies against non-interactive mode

🔄 Flow:
1. Load reads the file and picks a parser by extension
   (.transfat tries YAML then HCL)
2. Validate fills defaults and compiles patterns in place
3. The command layer merges runtime flags and hands the value to the
   transfer engine, which treats it as immutable

🔍 Example:

	cfg, err := config.Load(ctx, ".transfat")
	if err != nil {
		return err
	}
	cfg.NonInteractive = true

	policy := cfg.DeleteSources.Resolve(cfg.NonInteractive)
*/
package config
