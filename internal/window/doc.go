// Package window is the desktop host: an ebiten window that steps a
// pendulum system once per tick and draws both rods, both masses and the
// trace around a pivot fixed at the window centre.
package window
