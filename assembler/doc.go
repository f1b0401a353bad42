// Package assembler translates battle AI scripts into the byte stream run by
// the battle engine's AI interpreter.
//
// Source format:
//
//	@ comment                 full-line comments start with @, // or #
//	AI_CheckBadMove:          label, bound to the offset of the next instruction
//	    .align 2              directives are accepted and ignored
//	    if_hp_less_than AI_USER, 20, AI_CBM_Low   @ inline comment
//	    score -1
//	    goto AI_End
//
// An instruction is a mnemonic followed by comma-separated operands. Each
// operand is resolved in this order:
//
//	- a label defined anywhere in the script, encoded as its 4-byte offset;
//	- an integer literal (decimal, 0x hex, 0b binary, 0o or leading-zero octal,
//	  $ hex or a 'c' character) or a constant supplied with WithConstants;
//	- anything else is a symbolic constant. It is emitted as byte expressions
//	  for the host compiler to resolve.
//
// Assembly runs in stages: lines are parsed, macros are expanded once into
// primitive instructions, the offset pass binds labels and sizes instructions,
// and the emit pass encodes operands little-endian. Problems are collected as
// diagnostics on the Program; assembly itself never stops.
//
// Macros:
//
//	get_curr_move_type            get_type AI_TYPE_MOVE
//	get_user_type1                get_type AI_TYPE1_USER
//	get_user_type2                get_type AI_TYPE2_USER
//	get_target_type1              get_type AI_TYPE1_TARGET
//	get_target_type2              get_type AI_TYPE2_TARGET
//	if_ability B, A, L            check_ability B, A / if_equal 1, L
//	if_no_ability B, A, L         check_ability B, A / if_equal 0, L
//	if_type B, T, L               is_of_type B, T / if_equal 1, L
//	if_no_type B, T, L            is_of_type B, T / if_equal 0, L
//	if_double_battle L            is_double_battle / if_equal 1, L
//	if_not_double_battle L        is_double_battle / if_equal 0, L
//	if_target_faster L            if_user_goes 1, L
//	if_user_faster L              if_user_goes 0, L
//	if_any_move_disabled B, L     if_any_move_disabled_or_encored B, 0, L
//	if_any_move_encored B, L      if_any_move_disabled_or_encored B, 1, L
package assembler
