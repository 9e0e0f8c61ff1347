/*
Package config manages configuration parsing and validation for fitarchiver.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   YAML    |           |   HCL   |
	| Parser    |           | Parser  |
	+-----------+           +---------+

🎯 Purpose:
- Loads archive settings from an optional config file
- Validates values and applies defaults
- Supports multiple config formats through a parser registry

🔄 Flow:
1. Reads configuration from file
2. Parses format-specific syntax
3. Validates configuration values
4. Command-line flags override file values downstream

📝 Design Philosophy:
The config package produces one immutable Config value at startup. The
archiver never consults global state; everything it needs travels inside
that value.
*/
package config
