// Package history records what happened in every iteration of a clustering run.
//
// A History is an append-only ledger with two tracks:
//
//   - Records: one per assign-step, holding the distance from every point to
//     every centroid and the resulting assignment.
//   - Trajectory: one centroid snapshot per update-step, used to draw the path
//     each centroid took.
//
// Records never change after they are appended, so they can be inspected or
// exported at any time, including after a run was stopped early.
//
// # CSV Export
//
//	data, err := h.ExportCSV(3)
//	// Point,X,Y,Distance_to_C1,...,Distance_to_Ck,Assigned_Cluster,Assigned_Distance
//	// 1,0.5000,1.2500,0.1000,...,C1,0.1000
package history
