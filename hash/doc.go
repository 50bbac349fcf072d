// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

/*
Package hash provides the hashes used by the LZMA match finders.

The match finders index the positions of the dictionary by the hashes of
the next two, three or four bytes. The hashes are computed with the help
of a CRC-32 table, so that they are compatible with the hashes of the LZMA
SDK.
*/
package hash
